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

package sse_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alan-mat/responseflow/internal/sse"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		event sse.Event
		want  string
	}{
		{"content", sse.ContentEvent("4"), "data: {\"content\":\"4\"}\n\n"},
		{"done", sse.DoneEvent(), "data: {\"done\":true}\n\n"},
		{"error", sse.ErrorEvent("Stream error occurred"), "data: {\"error\":\"Stream error occurred\"}\n\n"},
		{"html is not escaped", sse.ContentEvent("<b>&</b>"), "data: {\"content\":\"<b>&</b>\"}\n\n"},
		{"newline in content", sse.ContentEvent("a\nb"), "data: {\"content\":\"a\\nb\"}\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := sse.Encode(&buf, tt.event); err != nil {
				t.Fatalf("unexpected encode error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("invalid encoding, expected '%q', got '%q'", tt.want, got)
			}
		})
	}
}

func TestEventIsTerminal(t *testing.T) {
	if sse.ContentEvent("x").IsTerminal() {
		t.Error("content event reported as terminal")
	}
	if !sse.DoneEvent().IsTerminal() {
		t.Error("done event not reported as terminal")
	}
	if !sse.ErrorEvent("x").IsTerminal() {
		t.Error("error event not reported as terminal")
	}
}

type nonFlusher struct {
	header http.Header
}

func (w *nonFlusher) Header() http.Header         { return w.header }
func (w *nonFlusher) Write(b []byte) (int, error) { return len(b), nil }
func (w *nonFlusher) WriteHeader(int)             {}

func TestNewWriterRequiresFlusher(t *testing.T) {
	_, err := sse.NewWriter(&nonFlusher{header: http.Header{}})
	if !errors.Is(err, sse.ErrStreamingUnsupported) {
		t.Errorf("expected ErrStreamingUnsupported, got '%v'", err)
	}
}

func TestWriterSendFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := sse.NewWriter(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.Send(sse.ContentEvent("Hel")); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
	if !rec.Flushed {
		t.Error("writer did not flush after sending an event")
	}
	if got := rec.Body.String(); got != "data: {\"content\":\"Hel\"}\n\n" {
		t.Errorf("unexpected body '%q'", got)
	}
}

func TestParseLine(t *testing.T) {
	e, err := sse.ParseLine("data: {\"content\":\"hi\"}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Content != "hi" {
		t.Errorf("expected content 'hi', got '%s'", e.Content)
	}

	if _, err := sse.ParseLine(": keep-alive"); !errors.Is(err, sse.ErrNotDataLine) {
		t.Errorf("expected ErrNotDataLine for comment line, got '%v'", err)
	}

	if _, err := sse.ParseLine("data: {\"content\":\"hi"); err == nil {
		t.Error("expected decode error for truncated json")
	}
}

func decodeAll(t *testing.T, r io.Reader) []sse.Event {
	t.Helper()
	dec := sse.NewDecoder(r)
	var events []sse.Event
	for {
		e, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		events = append(events, e)
	}
}

func TestDecoderConcatenatedEvents(t *testing.T) {
	body := "data: {\"content\":\"He\"}\n\ndata: {\"content\":\"llo\"}\n\ndata: {\"done\":true}\n\n"
	events := decodeAll(t, strings.NewReader(body))

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Content+events[1].Content != "Hello" {
		t.Errorf("invalid content, got '%s%s'", events[0].Content, events[1].Content)
	}
	if !events[2].Done {
		t.Error("last event is not done")
	}
}

// chunkedReader returns its chunks one per Read call, like a network
// connection delivering partial frames.
type chunkedReader struct {
	chunks []string
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestDecoderEventSplitAcrossReads(t *testing.T) {
	r := &chunkedReader{chunks: []string{
		"data: {\"cont",
		"ent\":\"Hel\"}\n\nda",
		"ta: {\"done\":true}\n\n",
	}}
	events := decodeAll(t, r)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Content != "Hel" {
		t.Errorf("expected content 'Hel', got '%s'", events[0].Content)
	}
	if !events[1].Done {
		t.Error("expected trailing done event")
	}
}

func TestDecoderSkipsMalformedLines(t *testing.T) {
	body := "data: {\"content\":\"a\"\n\n" +
		": comment\n" +
		"data: not json\n\n" +
		"data: {\"content\":\"b\"}\n\n" +
		"data: {\"error\":\"boom\"}"
	events := decodeAll(t, strings.NewReader(body))

	if len(events) != 2 {
		t.Fatalf("expected 2 well-formed events, got %d", len(events))
	}
	if events[0].Content != "b" {
		t.Errorf("expected content 'b', got '%s'", events[0].Content)
	}
	if events[1].Error != "boom" {
		t.Errorf("expected error 'boom', got '%s'", events[1].Error)
	}
}
