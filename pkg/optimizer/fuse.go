package optimizer

import "bf/compiler-go/pkg/ir"

// Fuse lowers interleaved shifts into instruction offsets. A running virtual
// delta accumulates Shift instructions and is attached as the offset of each
// Inc/Out/In encountered, so the real cursor only moves when it has to. The
// delta is materialized as a concrete Shift when a Loop is reached (loop
// entry needs a real cursor position), before any instruction addressed to
// the cursor itself, and at the end of the sequence if nonzero. Loop bodies
// fuse recursively with a fresh zero delta.
func Fuse(seq []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(seq))
	delta := 0
	flush := func() {
		if delta != 0 {
			out = append(out, ir.Shift{Delta: delta})
			delta = 0
		}
	}

	for _, in := range seq {
		switch v := in.(type) {
		case ir.Shift:
			delta += v.Delta
		case ir.Inc:
			out = append(out, ir.Inc{By: v.By, Offset: v.Offset + delta})
		case ir.Out:
			out = append(out, ir.Out{Offset: v.Offset + delta})
		case ir.In:
			out = append(out, ir.In{Offset: v.Offset + delta})
		case ir.Loop:
			flush()
			out = append(out, ir.Loop{Body: Fuse(v.Body)})
		default:
			// Set, Mult, Div and Scan read or write through the real cursor.
			flush()
			out = append(out, in)
		}
	}
	flush()
	return out
}

// UnwrapLoops strength-reduces linear-transfer loops. A body consisting
// exclusively of Inc instructions with exactly one Inc(-1, 0) (the counter)
// and at least one increment elsewhere runs exactly current_cell times, so
// the loop is replaced by one Mult or Div per target cell followed by
// Set(0) for the counter. The counter reset comes last because Mult and Div
// read the live counter value. Any other body shape keeps the loop and
// recurses instead.
func UnwrapLoops(seq []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(seq))
	for _, in := range seq {
		loop, ok := in.(ir.Loop)
		if !ok {
			out = append(out, in)
			continue
		}
		if repl, ok := linearTransfer(loop.Body); ok {
			out = append(out, repl...)
			continue
		}
		out = append(out, ir.Loop{Body: UnwrapLoops(loop.Body)})
	}
	return out
}

// linearTransfer matches the transfer-loop shape and builds its replacement.
func linearTransfer(body []ir.Instruction) ([]ir.Instruction, bool) {
	counters := 0
	transfers := make([]ir.Inc, 0, len(body))
	for _, in := range body {
		inc, ok := in.(ir.Inc)
		if !ok {
			return nil, false
		}
		if inc.Offset == 0 {
			if inc.By != -1 {
				return nil, false
			}
			counters++
			continue
		}
		transfers = append(transfers, inc)
	}
	if counters != 1 || len(transfers) == 0 {
		return nil, false
	}

	out := make([]ir.Instruction, 0, len(transfers)+1)
	for _, inc := range transfers {
		if inc.By > 0 {
			out = append(out, ir.Mult{By: inc.By, Offset: inc.Offset})
		} else {
			out = append(out, ir.Div{By: -inc.By, Offset: inc.Offset})
		}
	}
	out = append(out, ir.Set{Value: 0})
	return out, true
}
