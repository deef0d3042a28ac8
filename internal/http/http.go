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

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"net/url"
	"time"
)

// Common HTTP method, as defined in net/http package
const (
	MethodPost = "POST"
)

// retryStatusCodes are answers worth re-issuing a request for. A 500 from
// the relay is deterministic for the same input and is not retried.
var retryStatusCodes = map[int]bool{
	429: true,
	502: true,
	503: true,
	504: true,
}

// StatusError is returned for responses with a status code of 400 or
// above. Body holds at most the first 512 bytes of the response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e StatusError) Error() string {
	return fmt.Sprintf("(HTTP Error %d) %s", e.StatusCode, string(e.Body))
}

type Client struct {
	httpClient *gohttp.Client
	maxRetries int
	retryWait  time.Duration

	endpoint string
}

type ClientOption func(*Client)

func NewClient(endpoint string, opts ...ClientOption) Client {
	c := Client{
		endpoint:  endpoint,
		retryWait: 500 * time.Millisecond,
		httpClient: &gohttp.Client{
			Timeout: 60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithTimeout bounds every request including reading its body. Use zero
// for long-running streams.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxRetries sets how many extra attempts are made when the server
// cannot be reached or answers 429, 502, 503 or 504. Retries happen only
// before any response body is consumed.
func WithMaxRetries(maxRetries int) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
	}
}

func WithRetryWait(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryWait = d
	}
}

func (c *Client) Request(ctx context.Context, method string, path string, payload any, out any) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}

// RequestStream returns the open response body; the caller must close it.
func (c *Client) RequestStream(ctx context.Context, method string, path string, payload any) (io.ReadCloser, error) {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, method string, path string, payload any) (*gohttp.Response, error) {
	uri, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}
	uri.Path = path

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var resp *gohttp.Response
	for i := range c.maxRetries + 1 {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * c.retryWait):
			}
		}

		req, err := gohttp.NewRequestWithContext(ctx, method, uri.String(), bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if i == c.maxRetries {
				return nil, err
			}
			continue
		}

		if retryStatusCodes[resp.StatusCode] && i < c.maxRetries {
			resp.Body.Close()
			continue
		}
		break
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return nil, StatusError{StatusCode: resp.StatusCode, Body: respBytes}
	}

	return resp, nil
}
