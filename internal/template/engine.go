package template

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/frherrer/fdcompat/internal/domain"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// suiteTemplate renders the per-package runner and helpers.
const suiteTemplate = "suite"

// TemplateEngine renders compat specs into Go test source.
type TemplateEngine interface {
	Render(sourceFile string, specs []domain.CompatSpec, opts Options) (string, error)
	RenderSuite(opts Options) (string, error)
	ListTemplates() []string
}

// Options carries the package-level settings of generated tests.
type Options struct {
	PackageName string
	SourceBin   string
	TargetBin   string
	Fixture     string
	Env         map[string]string
}

// templateData is the struct passed to templates.
type templateData struct {
	PackageName string
	BuildTag    string
	SourceFile  string
	Specs       []domain.CompatSpec
	NeedsGomega bool
	SourceBin   string
	TargetBin   string
	Fixture     string
	Env         []string // KEY=VALUE, sorted
}

// DefaultEngine implements TemplateEngine.
type DefaultEngine struct {
	templates   map[string]*template.Template
	defaultName string
	templateDir string
	buildTag    string
}

// NewEngine creates a template engine. The embedded templates are always
// loaded; .tmpl files in templateDir, when it exists, override or extend them.
func NewEngine(templateDir, defaultTemplate, buildTag string) (*DefaultEngine, error) {
	engine := &DefaultEngine{
		templates:   make(map[string]*template.Template),
		defaultName: defaultTemplate,
		templateDir: templateDir,
		buildTag:    buildTag,
	}

	if err := engine.loadEmbedded(); err != nil {
		return nil, err
	}
	if templateDir != "" {
		if info, err := os.Stat(templateDir); err == nil && info.IsDir() {
			if err := engine.loadDir(); err != nil {
				return nil, err
			}
		}
	}

	if _, ok := engine.templates[defaultTemplate]; !ok {
		return nil, domain.NewError("template", domain.ConfigError, templateDir, 0,
			fmt.Sprintf("default template %q not found (available: %s)", defaultTemplate, strings.Join(engine.ListTemplates(), ", ")), nil)
	}
	return engine, nil
}

func (e *DefaultEngine) loadEmbedded() error {
	entries, err := embeddedTemplates.ReadDir("templates")
	if err != nil {
		return domain.NewError("template", domain.ReadFailure, "templates", 0, "failed to read embedded templates", err)
	}
	for _, entry := range entries {
		content, err := embeddedTemplates.ReadFile("templates/" + entry.Name())
		if err != nil {
			return domain.NewError("template", domain.ReadFailure, entry.Name(), 0, "failed to read embedded template", err)
		}
		if err := e.add(entry.Name(), string(content)); err != nil {
			return err
		}
	}
	return nil
}

// loadDir reads all .tmpl files from the template directory.
func (e *DefaultEngine) loadDir() error {
	entries, err := os.ReadDir(e.templateDir)
	if err != nil {
		return domain.NewError("template", domain.ReadFailure, e.templateDir, 0, "failed to read template directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmpl") {
			continue
		}
		path := filepath.Join(e.templateDir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return domain.NewError("template", domain.ReadFailure, path, 0, "failed to read template file", err)
		}
		if err := e.add(entry.Name(), string(content)); err != nil {
			return err
		}
	}
	return nil
}

func (e *DefaultEngine) add(fileName, content string) error {
	name := strings.TrimSuffix(fileName, ".tmpl")
	tmpl, err := template.New(name).Funcs(CustomFuncMap()).Parse(content)
	if err != nil {
		return domain.NewError("template", domain.ConfigError, fileName, 0, "failed to parse template", err)
	}
	e.templates[name] = tmpl
	return nil
}

// Render renders the specs extracted from one source file into a formatted
// Go test file.
func (e *DefaultEngine) Render(sourceFile string, specs []domain.CompatSpec, opts Options) (string, error) {
	data := e.data(opts)
	data.SourceFile = sourceFile
	data.Specs = specs
	for _, spec := range specs {
		for _, step := range spec.Steps {
			if !step.Skipped() {
				data.NeedsGomega = true
			}
		}
	}
	return e.execute(e.defaultName, sourceFile, data)
}

// RenderSuite renders the suite file holding the test entry point and the
// helpers every generated spec file relies on.
func (e *DefaultEngine) RenderSuite(opts Options) (string, error) {
	return e.execute(suiteTemplate, "", e.data(opts))
}

func (e *DefaultEngine) data(opts Options) templateData {
	env := make([]string, 0, len(opts.Env))
	for k, v := range opts.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return templateData{
		PackageName: opts.PackageName,
		BuildTag:    e.buildTag,
		SourceBin:   opts.SourceBin,
		TargetBin:   opts.TargetBin,
		Fixture:     opts.Fixture,
		Env:         env,
	}
}

func (e *DefaultEngine) execute(name, sourceFile string, data templateData) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", domain.NewError("template", domain.ConfigError, "", 0,
			fmt.Sprintf("template %q not found (available: %s)", name, strings.Join(e.ListTemplates(), ", ")), nil)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", domain.NewError("template", domain.ConfigError, sourceFile, 0, "failed to execute template", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// Return unformatted output alongside the error for debugging
		return buf.String(), domain.NewError("template", domain.ConfigError, sourceFile, 0,
			"generated code failed go/format validation", err)
	}
	return string(formatted), nil
}

// ListTemplates returns the names of all loaded templates, sorted.
func (e *DefaultEngine) ListTemplates() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
