package ir

import "sort"

// Tape maps signed cell indexes to byte values. Absent cells read as zero.
// All writes wrap modulo 256 immediately, in both execution modes, so that
// compile-time folding and real execution can never diverge on
// overflow-dependent idioms.
type Tape map[int]byte

// Get reads the cell at index i.
func (t Tape) Get(i int) byte {
	return t[i]
}

// Assign stores v (wrapped to a byte) at index i. Zero-valued cells are
// removed so the nonzero-cell set stays exact for residual snapshots.
func (t Tape) Assign(i, v int) {
	b := byte(v & 0xff)
	if b == 0 {
		delete(t, i)
		return
	}
	t[i] = b
}

// Add adds by to the cell at index i, wrapping modulo 256.
func (t Tape) Add(i, by int) {
	t.Assign(i, int(t[i])+by)
}

// Clone returns an independent copy of the tape.
func (t Tape) Clone() Tape {
	out := make(Tape, len(t))
	for i, v := range t {
		out[i] = v
	}
	return out
}

// Cell is one nonzero tape slot, used in residual snapshots.
type Cell struct {
	Index int
	Value byte
}

// Cells returns every nonzero cell ordered by index.
func (t Tape) Cells() []Cell {
	out := make([]Cell, 0, len(t))
	for i, v := range t {
		out = append(out, Cell{Index: i, Value: v})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

// State is the execution state threaded through one evaluator run. Output
// buffers bytes only in fold mode; in interpret mode writes are immediate
// side effects and the queue stays empty.
type State struct {
	Cursor int
	Tape   Tape
	Steps  int64
	Output []byte
}

// NewState returns the initial state: cursor at zero, all-zero tape.
func NewState() *State {
	return &State{Tape: make(Tape)}
}

// Clone returns an independent snapshot, used to roll an interrupted loop
// back to its entry state.
func (s *State) Clone() *State {
	out := &State{
		Cursor: s.Cursor,
		Tape:   s.Tape.Clone(),
		Steps:  s.Steps,
	}
	if len(s.Output) > 0 {
		out.Output = append([]byte(nil), s.Output...)
	}
	return out
}
