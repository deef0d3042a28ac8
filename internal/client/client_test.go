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

package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alan-mat/responseflow/internal/client"
	"github.com/alan-mat/responseflow/internal/provider/providertest"
	"github.com/alan-mat/responseflow/server"
)

func newRelay(t *testing.T, p *providertest.Provider) *client.Client {
	t.Helper()
	srv := httptest.NewServer(server.New(server.DefaultConfig(), p).Handler())
	t.Cleanup(srv.Close)
	return client.New(srv.URL)
}

func TestChat(t *testing.T) {
	c := newRelay(t, &providertest.Provider{Chunks: []string{"4"}})

	text, err := c.Chat(context.Background(), "2+2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "4" {
		t.Errorf("expected '4', got '%s'", text)
	}
}

func TestChatServerError(t *testing.T) {
	c := newRelay(t, &providertest.Provider{OpenErr: errors.New("rate limited")})

	_, err := c.Chat(context.Background(), "hi")
	var se client.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got '%v'", err)
	}
	if se.StatusCode != http.StatusInternalServerError || se.Message != "Failed to process request." {
		t.Errorf("unexpected server error %+v", se)
	}
}

func TestChatStream(t *testing.T) {
	chunks := []string{"Hel", "lo", " world"}
	c := newRelay(t, &providertest.Provider{Chunks: chunks})

	var got []string
	text, err := c.ChatStream(context.Background(), "hi", func(s string) {
		got = append(got, s)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "Hello world" {
		t.Errorf("expected 'Hello world', got '%s'", text)
	}
	if len(got) != len(chunks) {
		t.Fatalf("expected %d callbacks, got %d", len(chunks), len(got))
	}
	for i := range chunks {
		if got[i] != chunks[i] {
			t.Errorf("invalid fragment %d, expected '%s', got '%s'", i, chunks[i], got[i])
		}
	}
}

func TestChatStreamInBandError(t *testing.T) {
	c := newRelay(t, &providertest.Provider{
		Chunks:    []string{"Hel"},
		StreamErr: errors.New("boom"),
	})

	text, err := c.ChatStream(context.Background(), "hi", nil)
	var se client.StreamError
	if !errors.As(err, &se) {
		t.Fatalf("expected StreamError, got '%v'", err)
	}
	if se.Message != "Stream error occurred" {
		t.Errorf("unexpected stream error message '%s'", se.Message)
	}
	if text != "Hel" {
		t.Errorf("expected partial text 'Hel', got '%s'", text)
	}
}

func TestChatStreamPreStreamError(t *testing.T) {
	c := newRelay(t, &providertest.Provider{OpenErr: errors.New("invalid api key")})

	_, err := c.ChatStream(context.Background(), "hi", nil)
	var se client.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got '%v'", err)
	}
	if se.Message != "Failed to process request: invalid api key" {
		t.Errorf("unexpected server error message '%s'", se.Message)
	}
}

func TestChatStreamToleratesMalformedLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"content\":\"a\"}\n\n")
		fmt.Fprint(w, "data: {\"content\":\n\n")
		fmt.Fprint(w, "event: ping\n\n")
		fmt.Fprint(w, "data: {\"content\":\"b\"}\n\n")
		fmt.Fprint(w, "data: {\"done\":true}\n\n")
		fmt.Fprint(w, "data: {\"content\":\"after done\"}\n\n")
	}))
	defer srv.Close()

	text, err := client.New(srv.URL).ChatStream(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ab" {
		t.Errorf("expected 'ab', got '%s'", text)
	}
}

func TestChatStreamTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"content\":\"par\"}\n\n")
	}))
	defer srv.Close()

	text, err := client.New(srv.URL).ChatStream(context.Background(), "hi", nil)
	if !errors.Is(err, client.ErrStreamTruncated) {
		t.Errorf("expected ErrStreamTruncated, got '%v'", err)
	}
	if text != "par" {
		t.Errorf("expected partial text 'par', got '%s'", text)
	}
}
