package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"bf/compiler-go/pkg/driver"
	"bf/compiler-go/pkg/eval"
	"bf/compiler-go/pkg/optimizer"
)

const cliToolVersion = "bf-cli 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runFile(args[1:])
	case "repl":
		return runRepl(args[1:])
	default:
		return runFile(args)
	}
}

func runFile(args []string) int {
	cfg, err := loadBaseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	file, err := parseRunArgs(args, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	logger, closeLog, err := driver.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	pipeline := driver.NewPipeline(cfg, logger)
	switch cfg.Mode {
	case "c":
		artifact, err := pipeline.Compile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintln(os.Stdout, artifact)
	default:
		if err := pipeline.Interpret(file); err != nil {
			if errors.Is(err, eval.ErrStepLimit) {
				fmt.Fprintf(os.Stderr, "%v\nraise --max-steps or switch to --mode c\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			return 1
		}
	}
	return 0
}

// loadBaseConfig returns the defaults overlaid with a discovered bf.yml, if
// one exists from the working directory upwards.
func loadBaseConfig() (*driver.Config, error) {
	path, err := driver.FindConfig(".")
	if err != nil {
		if errors.Is(err, driver.ErrConfigNotFound) {
			return driver.DefaultConfig(), nil
		}
		return nil, err
	}
	return driver.LoadConfig(path)
}

// parseRunArgs applies the run flags on top of cfg and returns the source
// file path.
func parseRunArgs(args []string, cfg *driver.Config) (string, error) {
	file := ""
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--opt-level", "-O":
			value, err := flagValue(args, &i)
			if err != nil {
				return "", err
			}
			level, err := strconv.Atoi(value)
			if err != nil {
				return "", fmt.Errorf("invalid opt level %q", value)
			}
			cfg.OptLevel = optimizer.Level(level)
		case "--outdir":
			value, err := flagValue(args, &i)
			if err != nil {
				return "", err
			}
			cfg.OutDir = value
		case "--mode":
			value, err := flagValue(args, &i)
			if err != nil {
				return "", err
			}
			cfg.Mode = value
		case "--max-steps":
			value, err := flagValue(args, &i)
			if err != nil {
				return "", err
			}
			if value == "infinity" {
				cfg.MaxSteps = -1
				break
			}
			steps, err := strconv.ParseInt(value, 10, 64)
			if err != nil || steps <= 0 {
				return "", fmt.Errorf("invalid --max-steps %q (positive integer or \"infinity\")", value)
			}
			cfg.MaxSteps = steps
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return "", fmt.Errorf("unknown flag %q", arg)
			}
			if file != "" {
				return "", fmt.Errorf("unexpected argument %q", arg)
			}
			file = arg
		}
	}
	if file == "" {
		return "", errors.New("bf run requires a source file")
	}
	return file, nil
}

func flagValue(args []string, i *int) (string, error) {
	if *i+1 >= len(args) {
		return "", fmt.Errorf("flag %s requires a value", args[*i])
	}
	*i++
	return args[*i], nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  bf run <file> [--opt-level|-O 0|1|2] [--outdir <dir>] [--mode i|c] [--max-steps <n>|infinity]")
	fmt.Fprintln(os.Stderr, "  bf <file> [flags]")
	fmt.Fprintln(os.Stderr, "  bf repl")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Defaults: --opt-level 2, --mode i (interpret), --max-steps 8192, --outdir .")
}
