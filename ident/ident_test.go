package ident_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/aim/ident"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		msg      string
		text     string
		expected string
	}{
		{
			msg:      "missing ids",
			text:     "sine\n\tfrequency 440\nout\n\tin <- id1:out",
			expected: "sine id1\n\tfrequency 440\nout id2\n\tin <- id1:out",
		},
		{
			msg:      "after max suffix",
			text:     "sine id7\nsine\nsine id3",
			expected: "sine id7\nsine id8\nsine id3",
		},
		{
			msg:      "custom ids ignored",
			text:     "sine lead\nsine idx\nsine",
			expected: "sine lead\nsine idx\nsine id1",
		},
		{
			msg:      "comment kept",
			text:     "sine # lead voice\n\tfrequency 220\n",
			expected: "sine id1 # lead voice\n\tfrequency 220\n",
		},
		{
			msg:      "children untouched",
			text:     "out id1\n\tin\n# sine",
			expected: "out id1\n\tin\n# sine",
		},
		{
			msg:      "max int suffix",
			text:     "sine id9223372036854775807\nsine\nsine id5",
			expected: "sine id9223372036854775807\nsine id6\nsine id5",
		},
		{
			msg:      "empty",
			text:     "",
			expected: "",
		},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, ident.Allocate(test.text), test.msg)
	}
}

func TestAllocateIdempotent(t *testing.T) {
	text := "sine\n\tfrequency 440\nsine id4\nout\n\tin <- id4:out\n"
	once := ident.Allocate(text)
	assert.NotEqual(t, text, once)
	assert.Equal(t, once, ident.Allocate(once))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		id string
		n  int
		ok bool
	}{
		{"id1", 1, true},
		{"id42", 42, true},
		{"id", 0, false},
		{"idx", 0, false},
		{"id-1", 0, false},
		{"lead", 0, false},
	}
	for _, test := range tests {
		n, ok := ident.Number(test.id)
		assert.Equal(t, test.ok, ok, test.id)
		assert.Equal(t, test.n, n, test.id)
	}
}
