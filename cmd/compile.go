package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conneroisu/signet/internal/compiler"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type compileOptions struct {
	page   bool
	debug  bool
	strict bool
}

func newCompileCmd(a *app) *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile one template and print the JavaScript",
		Long: `Compile a single template and write the generated code to stdout.
Use "-" to read the template from stdin.

A template that cannot be compiled still produces output: a <pre> block
showing the source. The error is logged, and --strict turns it into a
non-zero exit.

Examples:
  signet compile card.jsx
  signet compile --wrap --name Card card.jsx
  signet compile --page --name Home pages/index.jsx
  signet compile --debug card.jsx      # tokens, AST and code as YAML
  echo '<p>{count()}</p>' | signet compile -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(a, cmd, args[0], opts)
		},
	}

	cmd.Flags().Bool("wrap", false, "Emit a component function with mount bootstrap")
	cmd.Flags().String("name", compiler.DefaultName, "Component name")
	cmd.Flags().Int("max-depth", 0, "Reject templates nested deeper than this (0 disables)")
	cmd.Flags().BoolVar(&opts.page, "page", false, "Compile as a page: mount and default export")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Print every pipeline stage as YAML")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit non-zero when the template falls back to a diagnostic")
	a.bind(cmd, map[string]string{
		"wrap":      "compiler.wrap",
		"name":      "compiler.name",
		"max-depth": "compiler.max_depth",
	})

	return cmd
}

func runCompile(a *app, cmd *cobra.Command, file string, opts *compileOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.logger(cmd).WithComponent("compile")

	source, err := readSource(cmd, file)
	if err != nil {
		return errors.WrapIO(err, errors.ErrCodeFileNotFound, "failed to read template").WithLocation(file, 0, 0)
	}

	compileOpts := cfg.Compiler.Options()
	compileOpts.IsPage = opts.page
	out := cmd.OutOrStdout()

	if opts.debug {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(compiler.Debug(source, compileOpts)); err != nil {
			return fmt.Errorf("failed to encode debug output: %w", err)
		}
		return enc.Close()
	}

	code, compileErr := compiler.CompileWithDiagnostics(source, compileOpts)
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if _, err := io.WriteString(out, code); err != nil {
		return err
	}

	if compileErr != nil {
		logger.Warn(cmd.Context(), compileErr, "Template fell back to diagnostic output", "file", file)
		if opts.strict {
			return errors.Wrap(compileErr, errors.ErrorTypeCompile, errors.ErrCodeCompileFailed, "compile failed").
				WithLocation(file, 0, 0)
		}
	}
	return nil
}

func readSource(cmd *cobra.Command, file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(file)
	return string(data), err
}
