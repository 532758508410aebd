// Package parser turns source text into an instruction tree. The language has
// eight one-character tokens; every other byte is commentary and ignored.
// Runs of repeated +, -, > and < collapse into a single Inc/Shift with a
// signed magnitude at parse time. This is purely lexical, not optimization.
package parser

import (
	"errors"
	"fmt"

	"bf/compiler-go/pkg/ir"
)

var (
	// ErrUnclosedLoop reports a [ with no matching ].
	ErrUnclosedLoop = errors.New("unclosed loop")
	// ErrMissingLoopStart reports a ] with no matching [.
	ErrMissingLoopStart = errors.New("missing loop start")
)

// frame is one nesting level during bracket matching. line/col locate the
// opening bracket for error reporting.
type frame struct {
	body []ir.Instruction
	line int
	col  int
}

// Parse builds a program from src. It fails only on unbalanced brackets.
func Parse(src []byte) ([]ir.Instruction, error) {
	stack := []frame{{}}
	line, col := 1, 0

	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\n' {
			line++
			col = 0
			continue
		}
		col++

		top := &stack[len(stack)-1]
		switch c {
		case '+', '-':
			by, n := runValue(src[i:])
			top.body = append(top.body, ir.Inc{By: by})
			col += n - 1
			i += n - 1
		case '>', '<':
			delta, n := runValue(src[i:])
			top.body = append(top.body, ir.Shift{Delta: delta})
			col += n - 1
			i += n - 1
		case '.':
			top.body = append(top.body, ir.Out{})
		case ',':
			top.body = append(top.body, ir.In{})
		case '[':
			stack = append(stack, frame{line: line, col: col})
		case ']':
			if len(stack) == 1 {
				return nil, fmt.Errorf("parse: %w at %d:%d", ErrMissingLoopStart, line, col)
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := &stack[len(stack)-1]
			parent.body = append(parent.body, ir.Loop{Body: closed.body})
		}
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1]
		return nil, fmt.Errorf("parse: %w opened at %d:%d", ErrUnclosedLoop, open.line, open.col)
	}
	return stack[0].body, nil
}

// runValue measures the run of identical characters starting at src[0],
// returning the signed magnitude and the run length. "+" and ">" count
// positive, "-" and "<" negative. Mixed runs such as "++--" are two runs;
// merging those is the optimizer's job.
func runValue(src []byte) (value, length int) {
	c := src[0]
	for length < len(src) && src[length] == c {
		length++
	}
	if c == '+' || c == '>' {
		return length, length
	}
	return -length, length
}
