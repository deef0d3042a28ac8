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

package provider

import (
	"context"
	"io"
	"iter"
	"sync"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, conf Config) (*GeminiProvider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  conf.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: conf.BaseURL,
		},
	})
	if err != nil {
		return nil, err
	}

	model := DefaultGeminiModel
	if conf.Model != "" {
		model = conf.Model
	}

	return &GeminiProvider{
		client: c,
		model:  model,
	}, nil
}

func (p GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Message), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (p GeminiProvider) CreateCompletionStream(ctx context.Context, req CompletionRequest) (CompletionStream, error) {
	ctx, cancel := context.WithCancel(ctx)
	seq := p.client.Models.GenerateContentStream(ctx, p.model, genai.Text(req.Message), nil)
	s, err := newGeminiCompletionStream(seq, cancel)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newGeminiCompletionStream pulls once before returning so request and
// auth failures surface before the caller commits to streaming. cancel
// must abort the request behind seq.
func newGeminiCompletionStream(seq iter.Seq2[*genai.GenerateContentResponse, error], cancel context.CancelFunc) (*GeminiCompletionStream, error) {
	next, stop := iter.Pull2(seq)

	first, err, valid := next()
	if valid && err != nil {
		stop()
		cancel()
		return nil, err
	}

	return &GeminiCompletionStream{
		first:   first,
		pending: valid,
		next:    next,
		stop:    stop,
		cancel:  cancel,
	}, nil
}

// GeminiCompletionStream may be closed from another goroutine while a
// Recv is in flight. next and stop never run concurrently, so in that
// case Close only cancels the request and the in-flight Recv stops the
// iterator once next returns.
type GeminiCompletionStream struct {
	first   *genai.GenerateContentResponse
	pending bool

	next   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	cancel context.CancelFunc

	mu       sync.Mutex
	inFlight bool
	closed   bool
}

func (s *GeminiCompletionStream) Recv() (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", io.ErrClosedPipe
	}
	if s.pending {
		s.pending = false
		s.mu.Unlock()
		return geminiText(s.first), nil
	}
	s.inFlight = true
	s.mu.Unlock()

	res, err, valid := s.next()

	s.mu.Lock()
	s.inFlight = false
	if s.closed {
		s.stop()
		s.mu.Unlock()
		return "", io.ErrClosedPipe
	}
	s.mu.Unlock()

	if !valid {
		// iterator is finished
		return "", io.EOF
	}

	if err != nil {
		return "", err
	}

	return geminiText(res), nil
}

func geminiText(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	return res.Text()
}

func (s *GeminiCompletionStream) Close() error {
	s.mu.Lock()
	s.closed = true
	if !s.inFlight {
		s.stop()
	}
	s.mu.Unlock()

	// aborts an in-flight read, the pending Recv then stops the iterator
	s.cancel()
	return nil
}
