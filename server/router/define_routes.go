// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"io/fs"
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/server/assets"
	"codeberg.org/dailyfe/dailyfe/server/middleware"
	"codeberg.org/dailyfe/dailyfe/server/routes"
)

type handlerFunc = func(http.ResponseWriter, *http.Request) error

// pages are served through middleware.CatchError.
var pages = []struct {
	pattern string
	handler handlerFunc
}{
	{"GET /tags/{tag}", routes.TagPage},
	{"GET /tags/{tag}/atom.xml", routes.TagAtomFeed},
	{"POST /tags/{tag}/follow", routes.TagFollowPOST},
	{"POST /tags/{tag}/block", routes.TagBlockPOST},

	// htmx
	{"GET /api/tag-feed", routes.TagFeedPartial},

	{"GET /login", routes.LoginPage},
	{"POST /login", routes.LoginPOST},
	{"POST /logout", routes.LogoutPOST},

	// themed 404 for everything else
	{"/", routes.NotFound},
}

// staticPatterns are answered from the embedded assets directory.
var staticPatterns = []string{"GET /robots.txt", "GET /css/", "GET /icons/"}

// DefineRoutes registers every route. Middleware comes from
// RegisterMiddleware.
func (router *Router) DefineRoutes() {
	static := staticFiles()
	for _, pattern := range staticPatterns {
		router.Handle(pattern, static)
	}

	for _, p := range pages {
		router.HandleFunc(p.pattern, middleware.CatchError(p.handler))
	}

	tagDirectory := func() string { return config.Global.WebappLink("tags") }

	router.HandleFunc("GET /tags", redirectWithQueryParam("/tags/", "tag", tagDirectory()))
	router.HandleFunc("GET /{$}", redirectTo(tagDirectory))

	if config.Global.Development.InDevelopment {
		router.debugRoutes()
	}
}

// staticFiles serves assets/ with an ETag that changes on every start,
// since embedded files only change with a new build.
func staticFiles() http.Handler {
	sub, err := fs.Sub(assets.FS, "assets")
	if err != nil {
		panic("embedded assets: " + err.Error())
	}

	files := http.FileServerFS(sub)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"`+config.Global.Instance.FileServerCacheID+`"`)
		files.ServeHTTP(w, r)
	})
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func (router *Router) debugRoutes() {
	if err := flightRecorder.Start(); err != nil {
		panic(err)
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = flightRecorder.WriteTo(w)
	})
}
