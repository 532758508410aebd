// Package eval executes instruction trees in one of two modes. Interpret
// performs real I/O and treats an exhausted step budget as a failure. Fold
// partially evaluates: output is buffered instead of written, input stops
// evaluation, and an exhausted budget is an expected, unremarkable outcome.
// Both modes wrap cell arithmetic modulo 256 immediately, so a folded prefix
// and a real run can never diverge on overflow.
package eval

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"bf/compiler-go/pkg/ir"
)

// ErrStepLimit reports that an interpreted run exceeded its step budget.
var ErrStepLimit = errors.New("step limit exceeded")

// Budget bounds the number of executed instructions in one run.
type Budget int64

// Unbounded disables the step budget. Interpretation of a non-terminating
// program then never returns.
const Unbounded Budget = -1

func (b Budget) exhausted(steps int64) bool {
	return b != Unbounded && steps >= int64(b)
}

// Outcome is the result of a fold run. Remaining is nil when the whole
// program was folded away; otherwise it holds the instructions that could
// not be executed, starting with the one that stopped evaluation.
type Outcome struct {
	State     *ir.State
	Remaining []ir.Instruction
}

// Complete reports whether folding consumed the entire program.
func (o Outcome) Complete() bool {
	return o.Remaining == nil
}

// Interpret runs prog from a fresh state, reading input bytes from in and
// writing output bytes to out as immediate side effects. It returns
// ErrStepLimit (wrapped) when the budget runs out before the program ends.
func Interpret(prog []ir.Instruction, in io.Reader, out io.Writer, budget Budget) (*ir.State, error) {
	return InterpretState(ir.NewState(), prog, in, out, budget)
}

// InterpretState is Interpret against a caller-owned state, for callers that
// keep a tape alive across runs (the repl). The budget is compared against
// the state's cumulative step count.
func InterpretState(st *ir.State, prog []ir.Instruction, in io.Reader, out io.Writer, budget Budget) (*ir.State, error) {
	m := &machine{budget: budget, in: bufio.NewReader(in), out: out}
	st, remaining, err := m.exec(st, prog)
	if err != nil {
		return st, err
	}
	if remaining != nil {
		return st, fmt.Errorf("interpret: %w after %d steps", ErrStepLimit, st.Steps)
	}
	return st, nil
}

// Fold partially evaluates prog from a fresh state. It never fails: budget
// exhaustion, an In instruction, or a loop that could not finish all yield a
// partial outcome with the stopping instruction at the head of Remaining.
func Fold(prog []ir.Instruction, budget Budget) Outcome {
	m := &machine{fold: true, budget: budget}
	st, remaining, _ := m.exec(ir.NewState(), prog)
	return Outcome{State: st, Remaining: remaining}
}

// BuildResidual turns a fold outcome into the four-part residual program.
// When folding completed, nothing remains that could read the machine state,
// so only the buffered output survives.
func BuildResidual(o Outcome) ir.Residual {
	res := ir.Residual{Output: o.State.Output}
	if o.Complete() {
		return res
	}
	res.Shift = o.State.Cursor
	res.Cells = o.State.Tape.Cells()
	res.Rest = o.Remaining
	return res
}

type machine struct {
	fold   bool
	budget Budget
	in     *bufio.Reader
	out    io.Writer
}

// exec walks seq, threading st through each instruction. It returns the
// final state, the instructions that were not executed (nil when the
// sequence completed), and any I/O error from interpret mode. Every executed
// instruction consumes one budget unit; a loop whose guard is false costs
// nothing.
func (m *machine) exec(st *ir.State, seq []ir.Instruction) (*ir.State, []ir.Instruction, error) {
	for i := 0; i < len(seq); i++ {
		switch in := seq[i].(type) {
		case ir.Loop:
			if st.Tape.Get(st.Cursor) == 0 {
				continue
			}
			var entry *ir.State
			if m.fold {
				entry = st.Clone()
			}
			for {
				if m.budget.exhausted(st.Steps) {
					if m.fold {
						// A residual program cannot resume mid-body; rewind
						// to loop entry and hand the whole loop back.
						st = entry
					}
					return st, seq[i:], nil
				}
				st.Steps++
				next, remaining, err := m.exec(st, in.Body)
				st = next
				if err != nil {
					return st, seq[i:], err
				}
				if remaining != nil {
					if m.fold {
						st = entry
					}
					return st, seq[i:], nil
				}
				if st.Tape.Get(st.Cursor) == 0 {
					break
				}
			}
		case ir.Scan:
			// Resumable as written: a scan restarted from the current cursor
			// is equivalent to the rest of the interrupted one.
			for st.Tape.Get(st.Cursor) != 0 {
				if m.budget.exhausted(st.Steps) {
					return st, seq[i:], nil
				}
				st.Steps++
				st.Cursor += in.Delta
			}
		case ir.In:
			if m.fold {
				// Never executed while folding: input is not available at
				// compile time.
				return st, seq[i:], nil
			}
			if m.budget.exhausted(st.Steps) {
				return st, seq[i:], nil
			}
			st.Steps++
			b, err := m.readByte()
			if err != nil {
				return st, seq[i:], err
			}
			st.Tape.Assign(st.Cursor+in.Offset, int(b))
		default:
			if m.budget.exhausted(st.Steps) {
				return st, seq[i:], nil
			}
			st.Steps++
			if err := m.step(st, seq[i]); err != nil {
				return st, seq[i:], err
			}
		}
	}
	return st, nil, nil
}

// step executes one non-control instruction.
func (m *machine) step(st *ir.State, in ir.Instruction) error {
	switch v := in.(type) {
	case ir.Shift:
		st.Cursor += v.Delta
	case ir.Set:
		st.Tape.Assign(st.Cursor, v.Value)
	case ir.Inc:
		st.Tape.Add(st.Cursor+v.Offset, v.By)
	case ir.Mult:
		st.Tape.Add(st.Cursor+v.Offset, int(st.Tape.Get(st.Cursor))*v.By)
	case ir.Div:
		st.Tape.Add(st.Cursor+v.Offset, -int(st.Tape.Get(st.Cursor))*v.By)
	case ir.Out:
		b := st.Tape.Get(st.Cursor + v.Offset)
		if m.fold {
			st.Output = append(st.Output, b)
			return nil
		}
		if _, err := m.out.Write([]byte{b}); err != nil {
			return fmt.Errorf("write output byte: %w", err)
		}
	}
	return nil
}

// readByte blocks for one input byte; end of input reads as zero.
func (m *machine) readByte() (byte, error) {
	b, err := m.in.ReadByte()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read input byte: %w", err)
	}
	return b, nil
}
