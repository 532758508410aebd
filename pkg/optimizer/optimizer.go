// Package optimizer rewrites instruction trees into smaller equivalent ones.
// Every pass is pure: it consumes a sequence and produces a new sequence,
// recursing into loop bodies, and never fails. The worst case for any pass is
// returning its input unchanged.
package optimizer

import (
	"log/slog"

	"bf/compiler-go/pkg/ir"
)

// Level selects how much of the pass pipeline runs.
type Level int

const (
	// LevelNone performs no rewriting at all.
	LevelNone Level = 0
	// LevelPeephole runs only the local peephole pass.
	LevelPeephole Level = 1
	// LevelFull runs the whole pipeline: peephole, dead-code trimming at both
	// ends, offset fusing, loop strength reduction and scan recognition, with
	// peephole cleanup between the structural passes.
	LevelFull Level = 2
)

type pass struct {
	name string
	fn   func([]ir.Instruction) []ir.Instruction
}

var fullPipeline = []pass{
	{"peephole", Peephole},
	{"dead-prefix", RemoveDeadPrefix},
	{"dead-suffix", RemoveDeadSuffix},
	{"fuse", Fuse},
	{"peephole", Peephole},
	{"unwrap-loops", UnwrapLoops},
	{"peephole", Peephole},
	{"recognize-scans", RecognizeScans},
	{"peephole", Peephole},
}

// Optimize rewrites prog according to level. It is total: any level at or
// below LevelNone returns prog unchanged, levels above LevelFull clamp down.
func Optimize(prog []ir.Instruction, level Level) []ir.Instruction {
	var pipeline []pass
	switch {
	case level <= LevelNone:
		return prog
	case level == LevelPeephole:
		pipeline = fullPipeline[:1]
	default:
		pipeline = fullPipeline
	}

	for _, p := range pipeline {
		before := ir.Count(prog)
		prog = p.fn(prog)
		slog.Debug("optimizer pass", "pass", p.name, "before", before, "after", ir.Count(prog))
	}
	return prog
}

// RemoveDeadPrefix drops instructions at the very start of the program that
// can never have an effect: the cursor starts at zero on an all-zero tape, so
// a leading run of (Shift, Loop) pairs never fires its loops, and dropping
// the shifts is sound because a uniformly zero unbounded tape looks the same
// from every cell. Any further leading bare loops are dropped the same way.
// Top level only; loop bodies never start from a known-zero state.
func RemoveDeadPrefix(seq []ir.Instruction) []ir.Instruction {
	i := 0
	for i+1 < len(seq) {
		if _, ok := seq[i].(ir.Shift); !ok {
			break
		}
		if _, ok := seq[i+1].(ir.Loop); !ok {
			break
		}
		i += 2
	}
	for i < len(seq) {
		if _, ok := seq[i].(ir.Loop); !ok {
			break
		}
		i++
	}
	return seq[i:]
}

// RemoveDeadSuffix drops trailing instructions after the last observable
// effect. In and Out are observable; loops are kept conservatively because
// they may contain I/O arbitrarily deep. No liveness analysis is done on
// loop bodies.
func RemoveDeadSuffix(seq []ir.Instruction) []ir.Instruction {
	end := len(seq)
	for end > 0 {
		switch seq[end-1].(type) {
		case ir.In, ir.Out, ir.Loop:
			return seq[:end]
		}
		end--
	}
	return seq[:end]
}

// RecognizeScans names the cursor-hunting idiom: a loop whose sole action is
// a shift becomes Scan, letting a renderer pick a faster strategy than a
// guarded loop.
func RecognizeScans(seq []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(seq))
	for _, in := range seq {
		loop, ok := in.(ir.Loop)
		if !ok {
			out = append(out, in)
			continue
		}
		if len(loop.Body) == 1 {
			if shift, ok := loop.Body[0].(ir.Shift); ok {
				out = append(out, ir.Scan{Delta: shift.Delta})
				continue
			}
		}
		out = append(out, ir.Loop{Body: RecognizeScans(loop.Body)})
	}
	return out
}
