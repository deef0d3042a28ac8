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

// Package sse implements the server-sent event framing shared by the
// streaming relay and its consumers.
//
// Every event travels on the wire as a single data line:
//
//	data: {"content":"Hel"}\n\n
//
// The payload is always a JSON object with exactly one of the fields
// content, done or error set.
package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const (
	// DataPrefix starts every event line.
	DataPrefix = "data: "

	// ContentType is the media type of a stream of events.
	ContentType = "text/event-stream"
)

var (
	ErrStreamingUnsupported = errors.New("response writer does not support flushing")
)

// Event is a single framed unit of a relayed completion stream.
// Terminal events carry Done or Error, never both.
type Event struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ContentEvent(content string) Event {
	return Event{Content: content}
}

func DoneEvent() Event {
	return Event{Done: true}
}

func ErrorEvent(msg string) Event {
	return Event{Error: msg}
}

// IsTerminal reports whether no further events follow e.
func (e Event) IsTerminal() bool {
	return e.Done || e.Error != ""
}

// Encode writes e to w as one data line followed by the blank line
// that ends an event.
func Encode(w io.Writer, e Event) error {
	var buf bytes.Buffer
	buf.WriteString(DataPrefix)

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return err
	}

	// json.Encoder terminates with a single newline already
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}

// Writer encodes events onto an http.ResponseWriter, flushing after
// every event so the client observes fragments as they arrive.
type Writer struct {
	w http.ResponseWriter
	f http.Flusher
}

// NewWriter returns ErrStreamingUnsupported when w cannot flush.
// Nothing is written to w by this call.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &Writer{w: w, f: f}, nil
}

func (sw *Writer) Send(e Event) error {
	if err := Encode(sw.w, e); err != nil {
		return err
	}
	sw.f.Flush()
	return nil
}
