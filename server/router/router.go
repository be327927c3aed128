// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"slices"

	"codeberg.org/dailyfe/dailyfe/server/middleware"
)

// Router is a ServeMux behind a stack of middleware. The first middleware
// added is the outermost.
type Router struct {
	*http.ServeMux

	stack   []middleware.Middleware
	handler http.Handler
}

func NewRouter() *Router {
	mux := http.NewServeMux()

	return &Router{ServeMux: mux, handler: mux}
}

// Use pushes m below the middleware added so far.
func (router *Router) Use(m middleware.Middleware) {
	router.stack = append(router.stack, m)

	var h http.Handler = router.ServeMux
	for _, m := range slices.Backward(router.stack) {
		h = middleware.Wrap(m, h)
	}

	router.handler = h
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.handler.ServeHTTP(w, r)
}
