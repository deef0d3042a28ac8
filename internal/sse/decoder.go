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

package sse

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
)

var (
	ErrNotDataLine = errors.New("line is not an event data line")
)

// ParseLine decodes a single line of an event stream. Lines without the
// data prefix return ErrNotDataLine; a data line holding invalid JSON
// returns the underlying decode error.
func ParseLine(line string) (Event, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, DataPrefix) {
		return Event{}, ErrNotDataLine
	}

	var e Event
	if err := json.Unmarshal([]byte(line[len(DataPrefix):]), &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Decoder reads events from a byte stream. Several events arriving in one
// read and events split across reads are both handled, since the input is
// split on newlines before any line is parsed. Lines that fail to parse
// are skipped.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next well-formed event. It returns io.EOF once the
// underlying reader is exhausted.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.r.ReadString('\n')
		if len(line) > 0 {
			e, perr := ParseLine(line)
			if perr == nil {
				return e, nil
			}
			if !errors.Is(perr, ErrNotDataLine) {
				slog.Debug("skipping malformed event line", "line", line, "err", perr)
			}
		}

		if err != nil {
			return Event{}, err
		}
	}
}
