// Package compiler translates JSX-like markup into construction-call code.
//
// The pipeline is Tokenize → Parse → Optimize → Generate. Every stage is a
// pure function over fresh values; nothing is cached between calls. The
// tokenizer and parser are deliberately permissive and never fail, and
// Compile converts any failure of a stricter stage into a rendered
// diagnostic instead of returning an error to its caller.
package compiler

import (
	"fmt"
	"strings"

	"github.com/conneroisu/signet/internal/errors"
)

const (
	// DefaultName is the component name used when Options.Name is empty.
	DefaultName = "App"
	// MountID is the id of the element pages are mounted into.
	MountID = "app"
	// RuntimeImport is the module generated components import helpers from.
	RuntimeImport = "signet/runtime"
)

// Options controls how Compile packages the generated expression.
type Options struct {
	// Wrap emits a component function definition plus mount bootstrap
	// instead of the bare expression.
	Wrap bool `yaml:"wrap" mapstructure:"wrap"`
	// Name is the generated component's identifier. Defaults to "App".
	Name string `yaml:"name" mapstructure:"name"`
	// IsPage ensures the output mounts the component and has a default export.
	IsPage bool `yaml:"is_page" mapstructure:"is_page"`
	// MaxDepth rejects trees nested deeper than this. Zero disables the check.
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"`
}

func (o Options) name() string {
	if o.Name == "" {
		return DefaultName
	}
	return o.Name
}

// Compile compiles a template. It never panics and never fails: on error the
// result renders the raw template as an escaped diagnostic block.
func Compile(template string, opts Options) string {
	code, _ := CompileWithDiagnostics(template, opts)
	return code
}

// CompileWithDiagnostics is Compile that also reports the error that caused a
// fallback render, so build tools can surface it. The returned code is valid
// output in both cases.
func CompileWithDiagnostics(template string, opts Options) (string, error) {
	expr, err := guard(func() (string, error) {
		return compileExpr(template, opts)
	})
	if err != nil {
		expr = Fallback(template)
	}
	return assemble(expr, opts), err
}

// Fallback renders template text as a diagnostic block.
func Fallback(template string) string {
	return genCall("pre", []Attr{{Name: "class", Value: "signet-error", Kind: AttrString}}, []string{quote(template)})
}

func compileExpr(template string, opts Options) (string, error) {
	nodes := Parse(Tokenize(template))
	if opts.MaxDepth > 0 {
		if depth := Depth(nodes); depth > opts.MaxDepth {
			return "", errors.NewCompileError(
				errors.ErrCodeMaxDepth,
				fmt.Sprintf("template nesting depth %d exceeds limit %d", depth, opts.MaxDepth),
				nil,
			).WithContext("depth", depth).WithContext("max_depth", opts.MaxDepth)
		}
	}
	return Generate(Optimize(nodes)), nil
}

// guard runs a pipeline stage, converting a panic into a compile error.
func guard(stage func() (string, error)) (code string, err error) {
	defer func() {
		if r := recover(); r != nil {
			code = ""
			err = errors.NewCompileError(
				errors.ErrCodeCompilePanic,
				fmt.Sprintf("compiler panic: %v", r),
				errors.NewInternalError(errors.ErrCodeInternalError, fmt.Sprint(r), nil),
			)
		}
	}()
	return stage()
}

// assemble packages an expression according to the options.
func assemble(expr string, opts Options) string {
	if !opts.Wrap && !opts.IsPage {
		return expr
	}

	name := opts.name()
	var b strings.Builder
	fmt.Fprintf(&b, "import { %s, mount } from %q;\n\n", Constructor, RuntimeImport)
	fmt.Fprintf(&b, "export function %s(props) {\n  return %s;\n}\n", name, expr)

	out := b.String()
	if opts.Wrap || !strings.Contains(out, "mount(") {
		out += fmt.Sprintf("\nmount(%s, %q);\n", name, MountID)
	}
	if opts.IsPage && !strings.Contains(out, "export default") {
		out += fmt.Sprintf("\nexport default %s;\n", name)
	}
	return out
}

// Depth returns the maximum element nesting depth of a tree.
func Depth(nodes []Node) int {
	deepest := 0
	for _, n := range nodes {
		if el, ok := n.(*Element); ok {
			if d := 1 + Depth(el.Children); d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}

// DebugArtifacts holds every intermediate result of one compilation.
type DebugArtifacts struct {
	Source    string  `yaml:"source"`
	Tokens    []Token `yaml:"tokens"`
	AST       []Node  `yaml:"ast"`
	Optimized []Node  `yaml:"optimized"`
	Code      string  `yaml:"code"`
	Error     string  `yaml:"error,omitempty"`
}

// Debug runs the pipeline keeping every intermediate stage.
func Debug(template string, opts Options) DebugArtifacts {
	tokens := Tokenize(template)
	ast := Parse(tokens)
	code, err := CompileWithDiagnostics(template, opts)

	art := DebugArtifacts{
		Source:    template,
		Tokens:    tokens,
		AST:       ast,
		Optimized: Optimize(ast),
		Code:      code,
	}
	if err != nil {
		art.Error = err.Error()
	}
	return art
}
