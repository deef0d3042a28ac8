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
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alan-mat/responseflow/internal/provider"
	"github.com/alan-mat/responseflow/internal/sse"
)

const (
	unaryFailureMessage  = "Failed to process request."
	streamFailurePrefix  = "Failed to process request: "
	streamFailureMessage = "Stream error occurred"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Chat relays a single message to the provider and answers with the
// whole completion.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	rid := RequestIDFrom(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("failed to decode chat request", "id", rid, "err", err)
		writeJSONError(w, http.StatusInternalServerError, unaryFailureMessage)
		return
	}
	slog.Debug("received chat request", "id", rid, "message", req.Message)

	text, err := s.provider.Complete(r.Context(), provider.CompletionRequest{Message: req.Message})
	if err != nil {
		slog.Error("provider completion failed", "id", rid, "err", err)
		writeJSONError(w, http.StatusInternalServerError, unaryFailureMessage)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: text})
}

// ChatStream relays a single message to the provider and forwards the
// completion as server-sent events while it is generated. Failures before
// the upstream stream is open are answered with a plain JSON error; later
// failures are reported in-band since the status line is already sent.
func (s *Server) ChatStream(w http.ResponseWriter, r *http.Request) {
	rid := RequestIDFrom(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("failed to decode chat stream request", "id", rid, "err", err)
		writeJSONError(w, http.StatusInternalServerError, streamFailurePrefix+err.Error())
		return
	}
	slog.Debug("received chat stream request", "id", rid, "message", req.Message)

	sw, err := sse.NewWriter(w)
	if err != nil {
		slog.Error("cannot stream response", "id", rid, "err", err)
		writeJSONError(w, http.StatusInternalServerError, streamFailurePrefix+err.Error())
		return
	}

	cs, err := s.provider.CreateCompletionStream(r.Context(), provider.CompletionRequest{Message: req.Message})
	if err != nil {
		slog.Error("error creating chat completion stream", "id", rid, "err", err)
		writeJSONError(w, http.StatusInternalServerError, streamFailurePrefix+err.Error())
		return
	}

	setStreamHeaders(w.Header())
	w.WriteHeader(http.StatusOK)

	err = relayCompletionStream(r.Context(), cs, sw)
	switch {
	case err == nil:
		slog.Debug("completion stream done", "id", rid)
	case isClientGone(err):
		slog.Debug("client went away, stream dropped", "id", rid, "err", err)
	default:
		slog.Error("provider stream error", "id", rid, "err", err)
	}
}

// ChatStreamPreflight answers CORS preflight requests for ChatStream.
func (s *Server) ChatStreamPreflight(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())
	w.WriteHeader(http.StatusNoContent)
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func setStreamHeaders(h http.Header) {
	h.Set("Content-Type", sse.ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	setCORSHeaders(h)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write json response", "err", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
