package driver_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bf/compiler-go/pkg/driver"
	"bf/compiler-go/pkg/eval"
	"bf/compiler-go/pkg/parser"
)

func testPipeline(cfg *driver.Config) (*driver.Pipeline, *bytes.Buffer) {
	p := driver.NewPipeline(cfg, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	out := &bytes.Buffer{}
	p.Stdin = strings.NewReader("")
	p.Stdout = out
	return p, out
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestPipelineInterpret(t *testing.T) {
	p, out := testPipeline(driver.DefaultConfig())
	path := writeSource(t, "letter.b", "++++++++[>++++++++<-]>+.")
	if err := p.Interpret(path); err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if out.String() != "A" {
		t.Fatalf("printed %q, want %q", out.String(), "A")
	}
}

func TestPipelineInterpretStepLimit(t *testing.T) {
	cfg := driver.DefaultConfig()
	cfg.MaxSteps = 50
	cfg.OptLevel = 0
	p, _ := testPipeline(cfg)
	path := writeSource(t, "spin.b", "+[]")
	err := p.Interpret(path)
	if !errors.Is(err, eval.ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
}

func TestPipelineInterpretParseError(t *testing.T) {
	p, _ := testPipeline(driver.DefaultConfig())
	path := writeSource(t, "broken.b", "[[")
	err := p.Interpret(path)
	if !errors.Is(err, parser.ErrUnclosedLoop) {
		t.Fatalf("expected ErrUnclosedLoop, got %v", err)
	}
}

func TestPipelineCompileWritesArtifact(t *testing.T) {
	cfg := driver.DefaultConfig()
	cfg.Mode = "c"
	cfg.OutDir = filepath.Join(t.TempDir(), "out")
	p, _ := testPipeline(cfg)

	path := writeSource(t, "greet.b", "++++++++[>++++++++<-]>+.")
	artifact, err := p.Compile(path)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if filepath.Base(artifact) != "greet.c" {
		t.Fatalf("artifact = %s, want greet.c", artifact)
	}
	src, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	// The whole program folds away into its literal output.
	if !strings.Contains(string(src), `fputs("A", stdout);`) {
		t.Fatalf("artifact does not contain folded output:\n%s", src)
	}
	if strings.Contains(string(src), "while") {
		t.Fatalf("fully folded program still contains loops:\n%s", src)
	}
}

func TestPipelineCompilePartial(t *testing.T) {
	cfg := driver.DefaultConfig()
	cfg.Mode = "c"
	cfg.OutDir = t.TempDir()
	p, _ := testPipeline(cfg)

	path := writeSource(t, "cat.b", "+>,.")
	artifact, err := p.Compile(path)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	src, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	for _, want := range []string{"*p = 1;", "p += 1;", "getchar()", "putchar("} {
		if !strings.Contains(string(src), want) {
			t.Fatalf("artifact missing %q:\n%s", want, src)
		}
	}
}
