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
	"errors"
	"fmt"
)

var (
	ErrInvalidLMProviderKind = errors.New("no lmprovider found for given kind")
	ErrEmptyCompletion       = errors.New("provider returned no completion choices")
)

type LMProviderKind string

const (
	LMProviderKindOpenAI LMProviderKind = "openai"
	LMProviderKindGemini LMProviderKind = "gemini"
)

// LMProvider is a hosted chat-completion service. Both calls send a
// single-turn conversation built from the request.
type LMProvider interface {
	Complete(context.Context, CompletionRequest) (string, error)
	CreateCompletionStream(context.Context, CompletionRequest) (CompletionStream, error)
}

type Config struct {
	Kind    LMProviderKind
	BaseURL string
	APIKey  string
	Model   string
}

func NewLMProvider(ctx context.Context, conf Config) (LMProvider, error) {
	switch conf.Kind {
	case LMProviderKindOpenAI, "":
		return NewOpenAIProvider(conf), nil
	case LMProviderKindGemini:
		return NewGeminiProvider(ctx, conf)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidLMProviderKind, conf.Kind)
	}
}
