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

// Package client consumes the chat relays exposed by the server package.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alan-mat/responseflow/internal/http"
	"github.com/alan-mat/responseflow/internal/sse"
)

const (
	chatPath       = "/api/chat"
	chatStreamPath = "/api/chat-stream"
)

var (
	ErrStreamTruncated = errors.New("stream ended without a terminal event")
)

// ServerError is a relay failure reported before any output was produced.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e ServerError) Error() string {
	return fmt.Sprintf("relay failed with status %d: %s", e.StatusCode, e.Message)
}

// StreamError is a failure reported in-band by the streaming relay after
// some content may already have been delivered.
type StreamError struct {
	Message string
}

func (e StreamError) Error() string {
	return "stream failed: " + e.Message
}

type Client struct {
	http http.Client
}

func New(serverURL string, opts ...http.ClientOption) *Client {
	return &Client{
		http: http.NewClient(serverURL, opts...),
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Chat sends message to the unary relay and returns the whole response.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp chatResponse
	err := c.http.Request(ctx, http.MethodPost, chatPath, chatRequest{Message: message}, &resp)
	if err != nil {
		return "", asServerError(err)
	}
	return resp.Response, nil
}

// ChatStream sends message to the streaming relay, calling onContent for
// every fragment as it arrives. It returns the accumulated text, which is
// also returned alongside a StreamError when the relay fails mid-stream.
func (c *Client) ChatStream(ctx context.Context, message string, onContent func(string)) (string, error) {
	body, err := c.http.RequestStream(ctx, http.MethodPost, chatStreamPath, chatRequest{Message: message})
	if err != nil {
		return "", asServerError(err)
	}
	defer body.Close()

	var acc strings.Builder
	dec := sse.NewDecoder(body)
	for {
		e, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return acc.String(), ErrStreamTruncated
		}
		if err != nil {
			return acc.String(), err
		}

		switch {
		case e.Error != "":
			return acc.String(), StreamError{Message: e.Error}
		case e.Done:
			return acc.String(), nil
		case e.Content != "":
			acc.WriteString(e.Content)
			if onContent != nil {
				onContent(e.Content)
			}
		default:
			slog.Debug("ignoring empty event")
		}
	}
}

// asServerError unwraps the relay's JSON error envelope when present.
func asServerError(err error) error {
	var se http.StatusError
	if !errors.As(err, &se) {
		return err
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if jerr := json.Unmarshal(se.Body, &envelope); jerr != nil || envelope.Error == "" {
		return ServerError{StatusCode: se.StatusCode, Message: strings.TrimSpace(string(se.Body))}
	}
	return ServerError{StatusCode: se.StatusCode, Message: envelope.Error}
}
