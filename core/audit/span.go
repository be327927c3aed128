// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime/trace"
	"strconv"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Span represents an HTTP request in flight.
type Span struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration
	metric   *servertiming.Metric

	Destination TrafficDestination
	RequestID   string
	Method      string
	URL         string
	// Operation is the GraphQL operation name for upstream requests.
	Operation  string
	StatusCode int
	Error      error
	// Body is only measured and, when saving is on, written to disk.
	Body []byte
}

// TrafficDestination describes the logical destination of an HTTP request.
type TrafficDestination string

// Constants for traffic destinations.
const (
	ToUser TrafficDestination = "user"
	ToAPI  TrafficDestination = "api"
)

var (
	// SaveResponses indicates whether to save upstream response bodies to storage.
	SaveResponses bool

	// ResponseDirectory is the directory where response bodies are saved.
	ResponseDirectory string
)

// ServerTimingName is the metric name published in the Server-Timing header.
func (span Span) ServerTimingName() string {
	// base64 without trailing '=' keeps the name a valid token
	name := span.URL
	if span.Operation != "" {
		name = span.Operation
	}

	return string(span.Destination) + "$" + span.Method + "$" + base64.RawURLEncoding.EncodeToString([]byte(name))
}

// Begin starts timing the span and registers a Server-Timing metric if ctx carries a header.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "http."+string(span.Destination))
	if timing := servertiming.FromContext(ctx); timing != nil {
		span.metric = timing.NewMetric(span.ServerTimingName())
		span.metric.Extra = map[string]string{
			"start": strconv.FormatFloat(float64(span.start.UnixNano())/float64(time.Millisecond), 'f', -1, 64),
		}
	}

	return ctx
}

// End stops timing. Calling it more than once is harmless.
func (span *Span) End() {
	if span.task == nil {
		return
	}

	span.duration = time.Since(span.start)
	span.task.End()

	if span.metric != nil {
		span.metric.Duration = span.duration
	}

	span.task = nil
}

// Duration returns the measured duration after End.
func (span Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span to the global logger. Upstream bodies are saved
// first when SaveResponses is on.
func (span Span) Log() {
	saved := span.saveBody()

	event := span.level().
		Str("sys", "http").
		Str("destination", string(span.Destination)).
		Str("request_id", span.RequestID).
		Str("method", span.Method).
		Str("url", span.URL).
		Int("status_code", span.StatusCode).
		Str("len", humanizeSize(len(span.Body))).
		Dur("dur", span.duration)

	if span.Operation != "" {
		event = event.Str("operation", span.Operation)
	}

	if saved != "" {
		event = event.Str("response_filename", saved)
	}

	event.Err(span.Error).Send()
}

// level is warn for failed upstream calls, which matter without debug
// logging.
func (span Span) level() *zerolog.Event {
	if span.Destination == ToAPI && (span.Error != nil || span.StatusCode >= 500) {
		return log.Warn()
	}

	return log.Debug()
}

// saveBody returns the file the body went to, or "".
func (span Span) saveBody() string {
	if !SaveResponses || span.Destination != ToAPI || len(span.Body) == 0 {
		return ""
	}

	name := filepath.Join(ResponseDirectory, span.RequestID)

	if err := os.WriteFile(name, span.Body, 0o600); err != nil {
		log.Err(err).Str("request_id", span.RequestID).Msg("Failed to save response")

		return ""
	}

	return name
}

var sizeUnits = []string{"K", "M", "G"}

// humanizeSize prints n bytes with a binary unit, two decimals above 1K.
func humanizeSize(n int) string {
	if n < 1024 {
		return strconv.Itoa(n)
	}

	size := float64(n) / 1024
	unit := 0

	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}

	return fmt.Sprintf("%.2f%s", size, sizeUnits[unit])
}
