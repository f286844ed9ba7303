// Package indent parses tab indented text into a tree of blocks and writes
// the tree back as text.
//
// One tab is one level of depth. Everything after a '#' is a comment and is
// not part of a line's text. Blank and comment-only lines are not blocks,
// they are kept as notes of the next block and written back unchanged. A
// child must be exactly one level deeper than its parent:
//
//	sine id1
//		frequency 440
//	out id2
//		in <- id1:out
//
// Errors found while interpreting a block are attached with Annotate and
// written back as trailing "  # ERROR: <message>" comments. Annotations left
// by an earlier pass are stripped on parse, so annotating the same text
// twice gives the same result.
package indent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIndentation is returned when a line is indented more than one level
// deeper than its parent.
var ErrIndentation = errors.New("indentation jumps more than one level")

// errorMarker prefixes every annotation.
const errorMarker = "  # ERROR: "

type (
	// Line is a single non-blank source line.
	Line struct {
		Text   string // trimmed content, comment excluded
		Depth  int    // number of leading tabs
		Number int    // 1-based position in the source text
		// Comment is the trailing comment including the whitespace before
		// the '#'. Empty if the line has none.
		Comment string
	}

	// Block is a line and the lines nested directly under it.
	Block struct {
		Line
		// Notes are the blank and comment-only lines right before the
		// block's line.
		Notes    []string
		Children []*Block
		Errors   []string
	}

	// Tree is a parsed document.
	Tree struct {
		Blocks []*Block
		// Tail holds the lines after the last block. The empty string after
		// a final newline is one of them.
		Tail []string
	}
)

// Lines splits text into non-blank lines. Comments are cut off and stale
// annotations are removed.
func Lines(text string) []Line {
	var lines []Line
	for _, l := range scan(text) {
		if l.Text != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// scan splits text into all of its lines. A line with empty Text is a note,
// its Comment holds the whole line.
func scan(text string) []Line {
	raws := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raws))
	for i, raw := range raws {
		raw = strings.TrimSuffix(raw, "\r")
		content, comment := splitComment(raw)
		if strings.TrimSpace(content) == "" {
			lines = append(lines, Line{Number: i + 1, Comment: content + comment})
			continue
		}
		lines = append(lines, Line{
			Text:    strings.TrimSpace(content),
			Depth:   depth(content),
			Number:  i + 1,
			Comment: comment,
		})
	}
	return lines
}

// Parse builds a tree of blocks from text. It fails with ErrIndentation if
// the structure cannot be built.
func Parse(text string) (*Tree, error) {
	var t Tree
	// stack[d] is the last block seen at depth d.
	var stack []*Block
	var notes []string
	for _, l := range scan(text) {
		if l.Text == "" {
			notes = append(notes, l.Comment)
			continue
		}
		if l.Depth > len(stack) {
			return nil, fmt.Errorf("line %d: %q: %w", l.Number, l.Text, ErrIndentation)
		}
		stack = stack[:l.Depth]
		b := &Block{Line: l, Notes: notes}
		notes = nil
		if l.Depth == 0 {
			t.Blocks = append(t.Blocks, b)
		} else {
			parent := stack[l.Depth-1]
			parent.Children = append(parent.Children, b)
		}
		stack = append(stack, b)
	}
	t.Tail = notes
	return &t, nil
}

// String writes the tree back as text, one tab per level, with annotations
// appended to their lines. Notes are written as they were.
func (t *Tree) String() string {
	var sb strings.Builder
	first := true
	line := func(s string) {
		if !first {
			sb.WriteByte('\n')
		}
		first = false
		sb.WriteString(s)
	}
	t.Walk(func(b *Block, depth int) {
		for _, n := range b.Notes {
			line(n)
		}
		line(strings.Repeat("\t", depth))
		sb.WriteString(b.Text)
		sb.WriteString(b.Comment)
		for _, msg := range b.Errors {
			sb.WriteString(errorMarker)
			sb.WriteString(msg)
		}
	})
	for _, n := range t.Tail {
		line(n)
	}
	return sb.String()
}

// Walk calls fn for every block in document order.
func (t *Tree) Walk(fn func(b *Block, depth int)) {
	for _, b := range t.Blocks {
		b.walk(0, fn)
	}
}

func (b *Block) walk(depth int, fn func(*Block, int)) {
	fn(b, depth)
	for _, c := range b.Children {
		c.walk(depth+1, fn)
	}
}

// Annotate attaches an error message to the block's line.
func (b *Block) Annotate(msg string) {
	b.Errors = append(b.Errors, msg)
}

// Annotatef attaches a formatted error message to the block's line.
func (b *Block) Annotatef(format string, args ...interface{}) {
	b.Annotate(fmt.Sprintf(format, args...))
}

// Fields splits the block's text around whitespace.
func (b *Block) Fields() []string {
	return strings.Fields(b.Text)
}

// splitComment returns the content before the first '#' and the comment with
// stale annotations removed.
func splitComment(raw string) (string, string) {
	i := strings.IndexByte(raw, '#')
	if i < 0 {
		return raw, ""
	}
	content := raw[:i]
	trimmed := strings.TrimRight(content, " \t")
	comment := raw[i:]
	if strings.HasPrefix(comment, strings.TrimLeft(errorMarker, " ")) {
		return trimmed, ""
	}
	if j := strings.Index(comment, errorMarker); j >= 0 {
		comment = comment[:j]
	}
	return trimmed, content[len(trimmed):] + comment
}

func depth(content string) int {
	n := 0
	for n < len(content) && content[n] == '\t' {
		n++
	}
	return n
}
