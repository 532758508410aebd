package driver

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bf/compiler-go/pkg/codegen"
	"bf/compiler-go/pkg/eval"
	"bf/compiler-go/pkg/ir"
	"bf/compiler-go/pkg/optimizer"
	"bf/compiler-go/pkg/parser"
)

// Pipeline runs source files through parse → optimize → execute or emit.
type Pipeline struct {
	Config *Config
	Log    *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

// NewPipeline builds a pipeline bound to the process standard streams.
func NewPipeline(cfg *Config, log *slog.Logger) *Pipeline {
	return &Pipeline{Config: cfg, Log: log, Stdin: os.Stdin, Stdout: os.Stdout}
}

// Interpret parses, optimizes and runs the program at path with real I/O.
func (p *Pipeline) Interpret(path string) error {
	prog, err := p.load(path)
	if err != nil {
		return err
	}
	st, err := eval.Interpret(prog, p.Stdin, p.Stdout, p.budget())
	if err != nil {
		return err
	}
	p.Log.Debug("interpreted", "file", path, "steps", st.Steps)
	return nil
}

// Compile parses, optimizes and partially evaluates the program at path,
// then renders the residual as a C source file in the output directory.
// It returns the written artifact path.
func (p *Pipeline) Compile(path string) (string, error) {
	prog, err := p.load(path)
	if err != nil {
		return "", err
	}

	outcome := eval.Fold(prog, p.budget())
	res := eval.BuildResidual(outcome)
	p.Log.Debug("folded", "file", path,
		"steps", outcome.State.Steps,
		"complete", outcome.Complete(),
		"residual", len(res.Rest),
		"output_bytes", len(res.Output))

	name := filepath.Base(path)
	src := codegen.EmitResidual(name, res)

	if err := os.MkdirAll(p.Config.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", p.Config.OutDir, err)
	}
	artifact := filepath.Join(p.Config.OutDir, stem(name)+".c")
	if err := os.WriteFile(artifact, []byte(src), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", artifact, err)
	}
	return artifact, nil
}

// load reads and parses a source file, then optimizes at the configured
// level.
func (p *Pipeline) load(path string) ([]ir.Instruction, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	optimized := optimizer.Optimize(prog, p.Config.OptLevel)
	p.Log.Debug("optimized", "file", path,
		"level", int(p.Config.OptLevel),
		"before", ir.Count(prog),
		"after", ir.Count(optimized))
	return optimized, nil
}

func (p *Pipeline) budget() eval.Budget {
	if p.Config.MaxSteps < 0 {
		return eval.Unbounded
	}
	return eval.Budget(p.Config.MaxSteps)
}

func stem(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		return name
	}
	return base
}
