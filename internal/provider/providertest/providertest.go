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

// Package providertest provides scripted in-memory LMProviders for tests.
package providertest

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/alan-mat/responseflow/internal/provider"
)

// Provider answers every request with the same scripted chunks. The
// unary completion is the concatenation of Chunks.
type Provider struct {
	Chunks []string

	// StreamErr is returned by Recv after all Chunks were delivered.
	StreamErr error
	// OpenErr fails CreateCompletionStream and Complete.
	OpenErr error
	// Endless streams repeat Chunks until closed.
	Endless bool

	mu       sync.Mutex
	requests []provider.CompletionRequest
	streams  []*Stream
}

func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	p.record(req)
	if p.OpenErr != nil {
		return "", p.OpenErr
	}
	return strings.Join(p.Chunks, ""), nil
}

func (p *Provider) CreateCompletionStream(ctx context.Context, req provider.CompletionRequest) (provider.CompletionStream, error) {
	p.record(req)
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}

	s := NewStream(p.Chunks, p.StreamErr)
	s.endless = p.Endless
	p.mu.Lock()
	p.streams = append(p.streams, s)
	p.mu.Unlock()
	return s, nil
}

func (p *Provider) record(req provider.CompletionRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
}

// Requests returns every request received so far.
func (p *Provider) Requests() []provider.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]provider.CompletionRequest(nil), p.requests...)
}

// Streams returns every stream opened so far.
func (p *Provider) Streams() []*Stream {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Stream(nil), p.streams...)
}

// Stream replays chunks and then ends with err, or io.EOF when err is nil.
// After Close every Recv returns io.ErrClosedPipe.
type Stream struct {
	mu     sync.Mutex
	chunks []string
	err    error
	recvs  int
	closed bool

	endless bool
}

func NewStream(chunks []string, err error) *Stream {
	return &Stream{
		chunks: append([]string(nil), chunks...),
		err:    err,
	}
}

func (s *Stream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recvs++
	if s.closed {
		return "", io.ErrClosedPipe
	}
	if s.endless && len(s.chunks) > 0 {
		return s.chunks[(s.recvs-1)%len(s.chunks)], nil
	}
	if len(s.chunks) > 0 {
		c := s.chunks[0]
		s.chunks = s.chunks[1:]
		return c, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Recvs counts Recv calls, including the ones that returned an error.
func (s *Stream) Recvs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recvs
}
