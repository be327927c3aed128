// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build integration

/*
To run these tests, specify `-tags=integration` when running `go test`.
They talk to the live daily.dev API.
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// Server configuration constants.
	host      = "127.0.0.1:8282"
	authority = "http://127.0.0.1:8282"

	// Polling constants.
	retryCount  = 10
	dialTimeout = 250 * time.Millisecond
)

var testToken = os.Getenv("DAILYFE_TEST_TOKEN")

// noRedirectClient reports redirects instead of following them.
var noRedirectClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

// httpTestCase defines a test case.
type httpTestCase struct {
	URL                string
	Method             string
	ExpectedStatusCode int
}

// TestMain is used for global setup and teardown.
//
// It starts the server and waits for it to be available before running tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("DAILYFE_HOST", "127.0.0.1")
	_ = os.Setenv("DAILYFE_PORT", "8282")
	_ = os.Setenv("DAILYFE_PAGES_FALLBACK", "blocking")

	go func() {
		if err := run(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for the server.
	if !waitForServerReady() {
		log.Fatalf("Server did not start in time")
	}

	os.Exit(m.Run())
}

// waitForServerReady polls the server until it's available or the retries are exhausted.
func waitForServerReady() bool {
	for range retryCount {
		conn, err := net.DialTimeout("tcp", host, dialTimeout)
		if err == nil {
			_ = conn.Close()

			return true // Server is up.
		}

		time.Sleep(dialTimeout)
	}

	return false
}

// TestBasicAllRoutes tests the anonymous routes of the server.
func TestBasicAllRoutes(t *testing.T) {
	t.Parallel()

	testCases := []httpTestCase{
		{URL: "/tags/webdev", Method: http.MethodGet, ExpectedStatusCode: http.StatusOK},
		{URL: "/tags/golang", Method: http.MethodGet, ExpectedStatusCode: http.StatusOK},
		{URL: "/tags/" + url.PathEscape("c++"), Method: http.MethodGet, ExpectedStatusCode: http.StatusOK},
		{URL: "/tags/webdev/atom.xml", Method: http.MethodGet, ExpectedStatusCode: http.StatusOK},
		{URL: "/api/tag-feed?tag=webdev", Method: http.MethodGet, ExpectedStatusCode: http.StatusOK},
		{URL: "/tags?tag=rust", Method: http.MethodGet, ExpectedStatusCode: http.StatusFound},
		{URL: "/login", Method: http.MethodGet, ExpectedStatusCode: http.StatusOK},
		{URL: "/robots.txt", Method: http.MethodGet, ExpectedStatusCode: http.StatusOK},
		{URL: "/", Method: http.MethodGet, ExpectedStatusCode: http.StatusFound},
		{URL: "/tags/webdev/follow", Method: http.MethodPost, ExpectedStatusCode: http.StatusUnauthorized},
		{URL: "/nowhere", Method: http.MethodGet, ExpectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s %s", tc.Method, tc.URL), func(t *testing.T) {
			t.Parallel()

			resp := makeRequest(t, buildRequest(t, authority+tc.URL, tc.Method, nil, nil))
			defer resp.Body.Close()

			assert.Equal(t, tc.ExpectedStatusCode, resp.StatusCode)
		})
	}
}

// TestAuthenticatedRoutes signs in with DAILYFE_TEST_TOKEN, follows a tag and
// takes it back.
func TestAuthenticatedRoutes(t *testing.T) {
	if testToken == "" {
		t.Skip("DAILYFE_TEST_TOKEN is not set")
	}

	resp := makeRequest(t, buildRequest(t, authority+"/login", http.MethodPost,
		url.Values{"token": {testToken}, "return": {"/tags/webdev"}}, nil))
	resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	for range 2 {
		resp = makeRequest(t, buildRequest(t, authority+"/tags/webdev/follow", http.MethodPost, url.Values{}, cookies))
		resp.Body.Close()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}

	resp = makeRequest(t, buildRequest(t, authority+"/tags/webdev", http.MethodGet, nil, cookies))
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "private, no-cache", resp.Header.Get("Cache-Control"))

	resp = makeRequest(t, buildRequest(t, authority+"/logout", http.MethodPost, url.Values{}, cookies))
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

// buildRequest builds a request. A non-nil form is sent url-encoded.
func buildRequest(t *testing.T, link, method string, form url.Values, cookies []*http.Cookie) *http.Request {
	t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(context.TODO(), method, link, body)
	require.NoError(t, err)

	for _, v := range cookies {
		req.AddCookie(v)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0")

	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return req
}

func makeRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := noRedirectClient.Do(req)
	require.NoError(t, err)

	return resp
}
