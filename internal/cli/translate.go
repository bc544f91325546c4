package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frherrer/fdcompat/internal/invocation"
	"github.com/frherrer/fdcompat/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate -- <fd args>...",
	Short: "Print the f arguments equivalent to an fd invocation",
	Long: `Parses the given fd arguments and prints the translated f argument list,
one argument per line with --shell joining them on one line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, _ := cmd.Flags().GetBool("shell")
		fArgs, err := translateArgs(args)
		if err != nil {
			return err
		}
		if shell {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fArgs, " "))
			return nil
		}
		for _, a := range fArgs {
			fmt.Fprintln(cmd.OutOrStdout(), a)
		}
		return nil
	},
}

func init() {
	translateCmd.Flags().Bool("shell", false, "print the arguments space-separated on one line")
	rootCmd.AddCommand(translateCmd)
}

func translateArgs(args []string) ([]string, error) {
	inv, err := invocation.Parse(args)
	if err != nil {
		return nil, err
	}
	return translate.Translate(inv, inv.AllPatterns())
}
