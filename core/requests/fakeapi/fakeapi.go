// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package fakeapi runs an in-process GraphQL upstream for tests.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/core/requests/lrucache"
)

// Call is one request received by the fake upstream.
type Call struct {
	Operation string
	Variables map[string]any
	Token     string
}

// Response is what the fake upstream answers for an operation.
type Response struct {
	Status int
	Body   string
}

// Data is a 200 response carrying data.
func Data(data string) Response {
	return Response{Status: http.StatusOK, Body: `{"data":` + data + `}`}
}

// Error is a 200 response carrying a single GraphQL error with code.
func Error(code, message string) Response {
	return Response{
		Status: http.StatusOK,
		Body:   `{"data":null,"errors":[{"message":"` + message + `","extensions":{"code":"` + code + `"}}]}`,
	}
}

// Server is a fake GraphQL upstream. Operations without a response get a 500.
type Server struct {
	Client *requests.Client

	mu        sync.Mutex
	responses map[string]Response
	calls     []Call
}

// New starts a fake upstream answering operations from responses.
// The returned client has a response cache when cached is true.
func New(t *testing.T, responses map[string]Response, cached bool) *Server {
	t.Helper()

	s := &Server{responses: make(map[string]Response, len(responses))}
	for op, resp := range responses {
		s.responses[op] = resp
	}

	server := httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(server.Close)

	s.Client = &requests.Client{
		URL:        server.URL,
		HTTPClient: server.Client(),
		UserAgent:  "DailyFE-test",
		CacheTTL:   time.Minute,
	}

	if cached {
		cache, err := lrucache.New(64, false)
		require.NoError(t, err)

		s.Client.Cache = cache
	}

	return s
}

// Set replaces the response for operation.
func (s *Server) Set(operation string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[operation] = resp
}

// Calls returns the received calls for operation, or all calls when operation is empty.
func (s *Server) Calls(operation string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call

	for _, c := range s.calls {
		if operation == "" || c.Operation == operation {
			out = append(out, c)
		}
	}

	return out
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	raw, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)

		return
	}

	token := r.Header.Get("Authorization")
	if len(token) > len("Bearer ") {
		token = token[len("Bearer "):]
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Operation: body.OperationName, Variables: body.Variables, Token: token})
	resp, ok := s.responses[body.OperationName]
	s.mu.Unlock()

	if !ok {
		resp = Response{Status: http.StatusInternalServerError, Body: `{"errors":[{"message":"unexpected operation"}]}`}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}
