package ir

// Residual is the four-part result of a partially evaluated run: the net
// cursor movement, the nonzero cells discovered, the output bytes already
// computed, and the instructions that could not be folded. It is produced
// once and handed to a renderer; it is never re-optimized.
//
// When Rest is empty the program's observable behavior is exactly Output:
// builders are expected to leave Shift and Cells zeroed in that case, since
// no instruction remains that could read them.
type Residual struct {
	Shift  int
	Cells  []Cell
	Output []byte
	Rest   []Instruction
}

// Empty reports whether the residual has no parts at all (a program that
// produced no output and left the machine untouched).
func (r Residual) Empty() bool {
	return r.Shift == 0 && len(r.Cells) == 0 && len(r.Output) == 0 && len(r.Rest) == 0
}

// OutputIsText reports whether every buffered output byte is safely
// representable inside a text literal. Renderers use this to choose between
// a printable-string encoding and a raw byte-array encoding.
func (r Residual) OutputIsText() bool {
	for _, b := range r.Output {
		if b == '\n' || b == '\t' || b == '\r' {
			continue
		}
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}
