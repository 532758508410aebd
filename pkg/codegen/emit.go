// Package codegen renders instruction trees and residual programs as
// standalone C translation units. The generated program uses a fixed-size
// unsigned-char tape with no bounds checking: out-of-range cursor access is
// undefined behavior in the generated code.
package codegen

import (
	"fmt"
	"strings"

	"bf/compiler-go/pkg/ir"
)

// TapeCells is the tape length of the generated program.
const TapeCells = 65536

type emitter struct {
	b     strings.Builder
	depth int
}

func (e *emitter) line(format string, args ...any) {
	for i := 0; i < e.depth; i++ {
		e.b.WriteByte('\t')
	}
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

// EmitProgram renders prog as a complete C program. name is recorded in the
// header comment only.
func EmitProgram(name string, prog []ir.Instruction) string {
	e := &emitter{}
	e.prologue(name)
	e.seq(prog)
	e.epilogue()
	return e.b.String()
}

// EmitResidual renders the four parts of a partially evaluated program: cell
// snapshot stores, the net cursor shift, the literal output, then the
// instructions that could not be folded.
func EmitResidual(name string, res ir.Residual) string {
	e := &emitter{}
	e.prologue(name)
	for _, c := range res.Cells {
		e.line("%s = %d;", cell(c.Index), c.Value)
	}
	if res.Shift != 0 {
		e.shift(res.Shift)
	}
	e.output(res.Output, res.OutputIsText())
	e.seq(res.Rest)
	e.epilogue()
	return e.b.String()
}

func (e *emitter) prologue(name string) {
	e.line("/* generated from %s */", name)
	e.line("#include <stdio.h>")
	e.line("")
	e.line("static unsigned char tape[%d];", TapeCells)
	e.line("")
	e.line("int main(void) {")
	e.depth++
	e.line("unsigned char *p = tape;")
}

func (e *emitter) epilogue() {
	e.line("return 0;")
	e.depth--
	e.line("}")
}

func (e *emitter) seq(seq []ir.Instruction) {
	for _, in := range seq {
		switch v := in.(type) {
		case ir.Shift:
			e.shift(v.Delta)
		case ir.Inc:
			if v.By >= 0 {
				e.line("%s += %d;", cell(v.Offset), v.By)
			} else {
				e.line("%s -= %d;", cell(v.Offset), -v.By)
			}
		case ir.Set:
			e.line("*p = %d;", v.Value)
		case ir.Mult:
			e.line("%s += *p * %d;", cell(v.Offset), v.By)
		case ir.Div:
			e.line("%s -= *p * %d;", cell(v.Offset), v.By)
		case ir.Scan:
			e.line("while (*p)")
			e.depth++
			e.shift(v.Delta)
			e.depth--
		case ir.Out:
			e.line("putchar(%s);", cell(v.Offset))
		case ir.In:
			e.line("{ int c = getchar(); %s = (unsigned char)(c == EOF ? 0 : c); }", cell(v.Offset))
		case ir.Loop:
			e.line("while (*p) {")
			e.depth++
			e.seq(v.Body)
			e.depth--
			e.line("}")
		}
	}
}

func (e *emitter) shift(delta int) {
	if delta >= 0 {
		e.line("p += %d;", delta)
	} else {
		e.line("p -= %d;", -delta)
	}
}

// output flushes folded output bytes: a string literal when every byte is
// printable text, a byte array otherwise.
func (e *emitter) output(out []byte, text bool) {
	if len(out) == 0 {
		return
	}
	if text {
		e.line("fputs(%s, stdout);", cString(out))
		return
	}
	vals := make([]string, len(out))
	for i, b := range out {
		vals[i] = fmt.Sprintf("%d", b)
	}
	e.line("{")
	e.depth++
	e.line("static const unsigned char folded[] = {%s};", strings.Join(vals, ", "))
	e.line("fwrite(folded, 1, sizeof folded, stdout);")
	e.depth--
	e.line("}")
}

// cell names the tape slot at the given cursor offset.
func cell(offset int) string {
	if offset == 0 {
		return "*p"
	}
	return fmt.Sprintf("p[%d]", offset)
}

// cString renders bytes as a quoted C string literal.
func cString(out []byte) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range out {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
