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

// Package render decides how a completion is presented on a terminal.
package render

import (
	"strings"
)

const fence = "```"

// codeIndicators are matched case-insensitively anywhere in the text. The
// list is deliberately loose: plain prose mentioning "return" or holding
// a semicolon is classified as code too.
var codeIndicators = []string{
	"function", "const", "let", "var", "class", "import", "export",
	"{", "}", ";", "console.log", "return", "if (", "for (", "while (",
	"async", "await", "try", "catch", "===", "!==", "=>", "usestate",
	"useeffect", "componentdidmount", "render()", "props", "state",
	"public class", "private", "public", "static", "void main",
	"def ", "print(", "if __name__", "import ", "from ", "class ",
	"<?php", "<?=", "echo ", "$_", "select", "from", "where", "insert",
}

// IsCode classifies text as source code when any of these hold:
//   - it contains one of codeIndicators, ignoring case
//   - it contains a fenced block marker (```)
//   - it has more than three lines and contains a double-space indent
func IsCode(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range codeIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}

	if strings.Contains(text, fence) {
		return true
	}

	return strings.Count(text, "\n") >= 3 && strings.Contains(text, "  ")
}

// Format prepares a completion for printing. Code is framed with rulers
// so it stands apart from the surrounding output; prose is returned as is.
func Format(text string) string {
	if text == "" || !IsCode(text) {
		return text
	}

	ruler := strings.Repeat("─", 40)
	var b strings.Builder
	b.WriteString(ruler)
	b.WriteByte('\n')
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteByte('\n')
	b.WriteString(ruler)
	return b.String()
}
