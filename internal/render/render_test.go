// Copyright 2025 Alan Matykiewicz
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to use,
// copy, modify, merge, publish, distribute, sublicense, and/or sell copies of the
// Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
// HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY,
// WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.

package render_test

import (
	"strings"
	"testing"

	"github.com/alan-mat/responseflow/internal/render"
)

func TestIsCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain answer", "4", false},
		{"prose", "Paris is the capital of France.", false},
		{"javascript", "const x = 1", true},
		{"python", "def add(a, b):\n    pass", true},
		{"sql upper case", "SELECT name FROM users", true},
		{"fence only", "```\nls -la\n```", true},
		{"semicolon in prose", "Yes; that works.", true},
		{"indented multi-line", "a\n  b\n  c\n  d", true},
		{"three lines with indent", "a\n  b\n  c", false},
		{"multi-line without indent", "one\ntwo\nthree\nfour", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render.IsCode(tt.text); got != tt.want {
				t.Errorf("IsCode(%q) = %v, expected %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if got := render.Format("4"); got != "4" {
		t.Errorf("prose must not be framed, got '%s'", got)
	}
	if got := render.Format(""); got != "" {
		t.Errorf("empty text must stay empty, got '%s'", got)
	}

	got := render.Format("const x = 1\n")
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected code framed by two rulers, got %d lines", len(lines))
	}
	if lines[1] != "const x = 1" {
		t.Errorf("unexpected framed content '%s'", lines[1])
	}
	if lines[0] != lines[2] || lines[0] == "" {
		t.Errorf("rulers missing or different: '%s' / '%s'", lines[0], lines[2])
	}
}
