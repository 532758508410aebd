package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"bf/compiler-go/pkg/eval"
	"bf/compiler-go/pkg/ir"
	"bf/compiler-go/pkg/optimizer"
	"bf/compiler-go/pkg/parser"
)

const historyFile = ".bf_history"

// runRepl evaluates one line of source at a time against a tape that
// persists across lines.
func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "bf repl takes no arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}

	cfg, err := loadBaseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	fmt.Println(cliToolVersion + " (:quit to exit, :reset to clear the tape, :dump to inspect it)")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	st := ir.NewState()
	for {
		line, err := ln.Prompt("bf> ")
		if err != nil {
			fmt.Println()
			return 0
		}
		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}

		if strings.HasPrefix(code, ":") {
			switch strings.ToLower(code) {
			case ":quit":
				return 0
			case ":reset":
				st = ir.NewState()
			case ":dump":
				dumpState(st)
			default:
				fmt.Println("unknown command. Type :quit, :reset or :dump.")
			}
			continue
		}

		prog, err := parser.Parse([]byte(code))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		prog = optimizer.Optimize(prog, cfg.OptLevel)

		// The budget applies per line.
		st.Steps = 0
		budget := eval.Unbounded
		if cfg.MaxSteps > 0 {
			budget = eval.Budget(cfg.MaxSteps)
		}
		st, err = eval.InterpretState(st, prog, os.Stdin, os.Stdout, budget)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		ln.AppendHistory(code)
	}
}

func dumpState(st *ir.State) {
	cells := st.Tape.Cells()
	if len(cells) == 0 {
		fmt.Printf("cursor=%d tape empty\n", st.Cursor)
		return
	}
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		parts = append(parts, fmt.Sprintf("[%d]=%d", c.Index, c.Value))
	}
	fmt.Printf("cursor=%d %s\n", st.Cursor, strings.Join(parts, " "))
}
