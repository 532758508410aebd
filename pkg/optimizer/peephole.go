package optimizer

import "bf/compiler-go/pkg/ir"

// Peephole applies local rewrites until no top-level pattern matches. The
// patterns are chosen so that a single left-to-right pass over the sequence
// reaches the fixed point: each incoming instruction is matched against the
// top of the already-rewritten output until no rule applies.
//
// Rules:
//   - adjacent Inc at the same offset merge; Inc with by=0 disappears
//   - adjacent Shift merge; Shift with delta=0 disappears
//   - Set(0) before In at the cursor is dropped (overwritten anyway)
//   - Set(0) before Inc(by, 0) collapses into Set(by)
//   - Set(0) before a Loop drops the Loop (guard is provably false)
//   - Inc at the cursor before Set(0) is dropped (overwritten anyway)
//   - Inc before In at the same target is dropped (overwritten anyway)
//   - the second of two adjacent Loops is dropped: the first only exits when
//     its guard cell is zero, so the second can never fire
//   - Loop whose body is a single Inc(±1, 0) becomes Set(0): with byte
//     wraparound the counter reaches zero from every starting value
func Peephole(seq []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(seq))
	for _, in := range seq {
		if loop, ok := in.(ir.Loop); ok {
			in = rewriteLoop(ir.Loop{Body: Peephole(loop.Body)})
		}
		out = push(out, in)
	}
	return out
}

// rewriteLoop applies the loop-level rules once the body has been rewritten.
func rewriteLoop(loop ir.Loop) ir.Instruction {
	if len(loop.Body) == 1 {
		if inc, ok := loop.Body[0].(ir.Inc); ok && inc.Offset == 0 && (inc.By == 1 || inc.By == -1) {
			return ir.Set{Value: 0}
		}
	}
	return loop
}

// push appends in to out, first reducing it against the current top of out
// until no rule applies. Rules that delete the incoming instruction return
// early; rules that rewrite it loop again against the newly exposed top.
func push(out []ir.Instruction, in ir.Instruction) []ir.Instruction {
	switch v := in.(type) {
	case ir.Inc:
		if v.By == 0 {
			return out
		}
	case ir.Shift:
		if v.Delta == 0 {
			return out
		}
	}

	for len(out) > 0 {
		top := out[len(out)-1]

		switch cur := in.(type) {
		case ir.Inc:
			if prev, ok := top.(ir.Inc); ok && prev.Offset == cur.Offset {
				out = out[:len(out)-1]
				merged := ir.Inc{By: prev.By + cur.By, Offset: cur.Offset}
				if merged.By == 0 {
					return out
				}
				in = merged
				continue
			}
			if prev, ok := top.(ir.Set); ok && prev.Value == 0 && cur.Offset == 0 {
				out = out[:len(out)-1]
				in = ir.Set{Value: cur.By}
				continue
			}
		case ir.Shift:
			if prev, ok := top.(ir.Shift); ok {
				out = out[:len(out)-1]
				merged := ir.Shift{Delta: prev.Delta + cur.Delta}
				if merged.Delta == 0 {
					return out
				}
				in = merged
				continue
			}
		case ir.Set:
			if prev, ok := top.(ir.Inc); ok && prev.Offset == 0 && cur.Value == 0 {
				out = out[:len(out)-1]
				continue
			}
		case ir.In:
			if prev, ok := top.(ir.Set); ok && prev.Value == 0 && cur.Offset == 0 {
				out = out[:len(out)-1]
				continue
			}
			if prev, ok := top.(ir.Inc); ok && prev.Offset == cur.Offset {
				out = out[:len(out)-1]
				continue
			}
		case ir.Loop:
			if prev, ok := top.(ir.Set); ok && prev.Value == 0 {
				return out
			}
			if _, ok := top.(ir.Loop); ok {
				return out
			}
		}
		break
	}
	return append(out, in)
}
