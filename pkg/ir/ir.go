package ir

import (
	"fmt"
	"strings"
)

// Instruction is one node of a program tree. The variant set is closed:
// consumers dispatch with an exhaustive type switch. Instructions are
// immutable values; rewrites build new trees rather than mutating in place.
type Instruction interface {
	isInstruction()
	String() string
}

// Shift moves the cursor by Delta cells (Delta may be negative).
type Shift struct {
	Delta int
}

// Inc adds By to the cell at cursor+Offset.
type Inc struct {
	By     int
	Offset int
}

// Set assigns Value to the cell at the cursor.
type Set struct {
	Value int
}

// Mult adds current_cell*By to the cell at cursor+Offset.
type Mult struct {
	By     int
	Offset int
}

// Div subtracts current_cell*By from the cell at cursor+Offset.
type Div struct {
	By     int
	Offset int
}

// Scan repeatedly shifts the cursor by Delta while the cell under the new
// cursor is nonzero. The parser never emits Scan; the optimizer recognizes
// it from Loop([Shift(Delta)]).
type Scan struct {
	Delta int
}

// In reads one byte into the cell at cursor+Offset (end of input reads 0).
type In struct {
	Offset int
}

// Out writes the byte at cursor+Offset.
type Out struct {
	Offset int
}

// Loop executes Body while the cell at the cursor is nonzero.
type Loop struct {
	Body []Instruction
}

func (Shift) isInstruction() {}
func (Inc) isInstruction()   {}
func (Set) isInstruction()   {}
func (Mult) isInstruction()  {}
func (Div) isInstruction()   {}
func (Scan) isInstruction()  {}
func (In) isInstruction()    {}
func (Out) isInstruction()   {}
func (Loop) isInstruction()  {}

func (i Shift) String() string { return fmt.Sprintf("Shift(%d)", i.Delta) }
func (i Inc) String() string   { return fmt.Sprintf("Inc(%d, %d)", i.By, i.Offset) }
func (i Set) String() string   { return fmt.Sprintf("Set(%d)", i.Value) }
func (i Mult) String() string  { return fmt.Sprintf("Mult(%d, %d)", i.By, i.Offset) }
func (i Div) String() string   { return fmt.Sprintf("Div(%d, %d)", i.By, i.Offset) }
func (i Scan) String() string  { return fmt.Sprintf("Scan(%d)", i.Delta) }
func (i In) String() string    { return fmt.Sprintf("In(%d)", i.Offset) }
func (i Out) String() string   { return fmt.Sprintf("Out(%d)", i.Offset) }

func (i Loop) String() string {
	var b strings.Builder
	b.WriteString("Loop[")
	for n, inner := range i.Body {
		if n > 0 {
			b.WriteString(" ")
		}
		b.WriteString(inner.String())
	}
	b.WriteString("]")
	return b.String()
}

// Format renders a sequence the way Loop bodies render, one instruction per
// line at the top level. Used by debug logging and test failure messages.
func Format(seq []Instruction) string {
	parts := make([]string, 0, len(seq))
	for _, in := range seq {
		parts = append(parts, in.String())
	}
	return strings.Join(parts, "\n")
}

// Count reports the total number of instructions in seq, including every
// instruction nested inside loop bodies.
func Count(seq []Instruction) int {
	n := 0
	for _, in := range seq {
		n++
		if loop, ok := in.(Loop); ok {
			n += Count(loop.Body)
		}
	}
	return n
}
