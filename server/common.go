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

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alan-mat/responseflow/internal/provider"
	"github.com/alan-mat/responseflow/internal/sse"
)

// chunkBufferSize bounds how far the upstream reader may run ahead of
// the client.
const chunkBufferSize = 16

var (
	errClientGone = errors.New("client stopped reading")
)

func isClientGone(err error) bool {
	return errors.Is(err, errClientGone)
}

// eventSender is satisfied by *sse.Writer.
type eventSender interface {
	Send(sse.Event) error
}

// relayCompletionStream forwards every non-empty fragment of cs as a
// content event and ends with exactly one terminal event: done when the
// upstream finished, error when it failed. A failed write to the client
// stops the relay without a terminal event and the returned error wraps
// errClientGone. The stream is always closed on return.
//
// Upstream chunks are read by a separate goroutine feeding a bounded
// channel, so a slow client applies backpressure to the provider.
func relayCompletionStream(ctx context.Context, cs provider.CompletionStream, out eventSender) error {
	closeStream := sync.OnceFunc(func() { cs.Close() })
	defer closeStream()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	chunks := make(chan string, chunkBufferSize)

	g.Go(func() error {
		defer close(chunks)

		for {
			chunk, err := cs.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}

			// role-only and empty chunks carry nothing to forward
			if chunk == "" {
				continue
			}

			select {
			case chunks <- chunk:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for chunk := range chunks {
		if err := out.Send(sse.ContentEvent(chunk)); err != nil {
			// unblock the reader: it is either waiting on the channel
			// or inside Recv on the upstream connection
			cancel()
			closeStream()
			for range chunks {
			}
			_ = g.Wait()
			return fmt.Errorf("%w: %w", errClientGone, err)
		}
	}

	if err := g.Wait(); err != nil {
		if serr := out.Send(sse.ErrorEvent(streamFailureMessage)); serr != nil {
			return fmt.Errorf("%w: %w", errClientGone, serr)
		}
		return err
	}

	if err := out.Send(sse.DoneEvent()); err != nil {
		return fmt.Errorf("%w: %w", errClientGone, err)
	}
	return nil
}
