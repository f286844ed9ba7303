// Package ident assigns identifiers to node headers that lack one.
package ident

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Prefix of synthesized identifiers.
const Prefix = "id"

// Allocate rewrites text so that every top-level line carries an id as its
// second token. Missing ids are synthesized as id<N>, where N is greater than
// any numeric suffix of the id<N> headers already present. Custom ids are
// left untouched, so is id<MaxInt> which has no successor. Text where every
// header already has an id is returned unchanged.
func Allocate(text string) string {
	lines := strings.Split(text, "\n")
	used := make(map[string]struct{})
	max := 0
	for _, raw := range lines {
		fields, ok := header(raw)
		if !ok || len(fields) < 2 {
			continue
		}
		used[fields[1]] = struct{}{}
		if n, ok := Number(fields[1]); ok && n > max && n < math.MaxInt {
			max = n
		}
	}

	for i, raw := range lines {
		fields, ok := header(raw)
		if !ok || len(fields) != 1 {
			continue
		}
		max++
		id := Prefix + strconv.Itoa(max)
		if _, ok := used[id]; ok {
			panic(fmt.Sprintf("ident: synthesized id %s is already in use", id))
		}
		used[id] = struct{}{}
		content := strings.TrimRight(strip(raw), " \t\r")
		lines[i] = content + " " + id + raw[len(content):]
	}
	return strings.Join(lines, "\n")
}

// Number returns the numeric suffix of an id<N> identifier.
func Number(id string) (int, bool) {
	if !strings.HasPrefix(id, Prefix) {
		return 0, false
	}
	digits := id[len(Prefix):]
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// header returns the tokens of a top-level line.
func header(raw string) ([]string, bool) {
	content := strip(raw)
	if strings.TrimSpace(content) == "" || content[0] == '\t' {
		return nil, false
	}
	return strings.Fields(content), true
}

// strip cuts off the comment.
func strip(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i]
	}
	return raw
}
