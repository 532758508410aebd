package main

import (
	"testing"

	"bf/compiler-go/pkg/driver"
	"bf/compiler-go/pkg/optimizer"
)

func TestParseRunArgsDefaults(t *testing.T) {
	cfg := driver.DefaultConfig()
	file, err := parseRunArgs([]string{"prog.b"}, cfg)
	if err != nil {
		t.Fatalf("parseRunArgs: %v", err)
	}
	if file != "prog.b" {
		t.Fatalf("file = %q", file)
	}
	if cfg.OptLevel != optimizer.LevelFull || cfg.Mode != "i" || cfg.MaxSteps != 8192 || cfg.OutDir != "." {
		t.Fatalf("defaults disturbed: %+v", cfg)
	}
}

func TestParseRunArgsFlags(t *testing.T) {
	cfg := driver.DefaultConfig()
	file, err := parseRunArgs([]string{"-O", "1", "--mode", "c", "--outdir", "build", "--max-steps", "42", "prog.b"}, cfg)
	if err != nil {
		t.Fatalf("parseRunArgs: %v", err)
	}
	if file != "prog.b" {
		t.Fatalf("file = %q", file)
	}
	if cfg.OptLevel != optimizer.LevelPeephole {
		t.Errorf("OptLevel = %d", cfg.OptLevel)
	}
	if cfg.Mode != "c" {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.OutDir != "build" {
		t.Errorf("OutDir = %q", cfg.OutDir)
	}
	if cfg.MaxSteps != 42 {
		t.Errorf("MaxSteps = %d", cfg.MaxSteps)
	}
}

func TestParseRunArgsInfinity(t *testing.T) {
	cfg := driver.DefaultConfig()
	if _, err := parseRunArgs([]string{"--max-steps", "infinity", "prog.b"}, cfg); err != nil {
		t.Fatalf("parseRunArgs: %v", err)
	}
	if cfg.MaxSteps != -1 {
		t.Fatalf("MaxSteps = %d, want -1", cfg.MaxSteps)
	}
}

func TestParseRunArgsErrors(t *testing.T) {
	cases := [][]string{
		{},                               // no file
		{"--max-steps", "0", "prog.b"},   // non-positive budget
		{"--max-steps", "abc", "prog.b"}, // not a number
		{"--opt-level"},                  // missing value
		{"--frobnicate", "prog.b"},       // unknown flag
		{"a.b", "b.b"},                   // two files
	}
	for _, args := range cases {
		if _, err := parseRunArgs(args, driver.DefaultConfig()); err == nil {
			t.Errorf("parseRunArgs(%v) accepted invalid input", args)
		}
	}
}
