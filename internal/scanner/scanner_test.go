package scanner_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/fdcompat/internal/domain"
	"github.com/frherrer/fdcompat/internal/scanner"
)

func touch(root string, rel ...string) {
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		Expect(os.MkdirAll(filepath.Dir(p), 0755)).To(Succeed())
		Expect(os.WriteFile(p, []byte("fn x() {}\n"), 0644)).To(Succeed())
	}
}

var _ = Describe("Scanner", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		touch(root,
			"tests.rs",
			"README.md",
			"notes.txt",
			"src/lib.rs",
			"target/debug/build.rs",
		)
	})

	Describe("Scan", func() {
		It("should find files matching patterns in sorted order", func() {
			files, err := scanner.NewScanner(true).Scan(root, []string{"*.rs", "*.md"}, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(Equal([]string{
				filepath.Join(root, "README.md"),
				filepath.Join(root, "src", "lib.rs"),
				filepath.Join(root, "target", "debug", "build.rs"),
				filepath.Join(root, "tests.rs"),
			}))
		})

		It("should honour exclude patterns", func() {
			files, err := scanner.NewScanner(true).Scan(root, []string{"*.rs"}, []string{"target/**"})
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(ConsistOf(
				filepath.Join(root, "src", "lib.rs"),
				filepath.Join(root, "tests.rs"),
			))
		})

		It("should stay at the top level when not recursive", func() {
			files, err := scanner.NewScanner(false).Scan(root, []string{"*.rs"}, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(Equal([]string{filepath.Join(root, "tests.rs")}))
		})

		It("should match ** patterns against nested paths", func() {
			files, err := scanner.NewScanner(true).Scan(root, []string{"src/**/*.rs"}, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(Equal([]string{filepath.Join(root, "src", "lib.rs")}))
		})
	})

	Describe("Resolve", func() {
		It("should take file paths as given and expand directories", func() {
			file := filepath.Join(root, "notes.txt")
			files, err := scanner.NewScanner(true).Resolve(
				[]string{file, filepath.Join(root, "src"), file},
				[]string{"*.rs"}, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(Equal([]string{file, filepath.Join(root, "src", "lib.rs")}))
		})

		It("should fail for a missing path with a hint", func() {
			_, err := scanner.NewScanner(true).Resolve([]string{filepath.Join(root, "missing.rs")}, []string{"*.rs"}, nil)
			Expect(domain.KindOf(err)).To(Equal(domain.ReadFailure))
			Expect(err.Error()).To(ContainSubstring("--fd-tests"))
		})
	})
})
