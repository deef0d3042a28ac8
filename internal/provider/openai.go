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

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
	DefaultOpenAIModel   = "llama3-8b-8192"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(conf Config) *OpenAIProvider {
	c := openai.DefaultConfig(conf.APIKey)
	c.BaseURL = DefaultOpenAIBaseURL
	if conf.BaseURL != "" {
		c.BaseURL = conf.BaseURL
	}

	model := DefaultOpenAIModel
	if conf.Model != "" {
		model = conf.Model
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(c),
		model:  model,
	}
}

func (p OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	res, err := p.client.CreateChatCompletion(ctx, p.buildRequest(req))
	if err != nil {
		return "", err
	}

	if len(res.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return res.Choices[0].Message.Content, nil
}

func (p OpenAIProvider) CreateCompletionStream(ctx context.Context, req CompletionRequest) (CompletionStream, error) {
	openaiReq := p.buildRequest(req)
	openaiReq.Stream = true

	s, err := p.client.CreateChatCompletionStream(ctx, openaiReq)
	if err != nil {
		return nil, err
	}

	completionStream := &OpenAIChatStream{
		stream: s,
	}
	return completionStream, nil
}

func (p OpenAIProvider) buildRequest(req CompletionRequest) openai.ChatCompletionRequest {
	openaiReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Message,
			},
		},
	}
	return openaiReq
}

type OpenAIChatStream struct {
	stream *openai.ChatCompletionStream
}

func (s OpenAIChatStream) Recv() (string, error) {
	res, err := s.stream.Recv()
	if err != nil {
		return "", err
	}

	// role-only and usage chunks may arrive without choices
	if len(res.Choices) == 0 {
		return "", nil
	}
	return res.Choices[0].Delta.Content, nil
}

func (s OpenAIChatStream) Close() error {
	return s.stream.Close()
}
