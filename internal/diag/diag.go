// Package diag serves read-only engine diagnostics over HTTP.
//
// Routes:
//
//	GET /v1/stats     frame and runtime counters
//	GET /v1/types     type identity manifest
//	GET /v1/version   build information
package diag

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fulldump/box"
	"github.com/go-json-experiment/json"

	"github.com/kolkov/enginecore/core"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
	"github.com/kolkov/enginecore/internal/engine"
)

// Build returns the diagnostics API for e. Handlers only read published
// snapshots, so the engine loop keeps running on its own goroutine.
func Build(e *engine.Engine, log *slog.Logger) *box.B {
	b := box.NewBox()
	b.WithInterceptors(
		accessLog(log),
		box.RecoverFromPanic,
		prettyError,
	)

	v1 := b.Resource("/v1")
	v1.Resource("/stats").WithActions(
		box.Get(func() engine.Stats { return e.Snapshot() }).WithName("stats"),
	)
	v1.Resource("/types").WithActions(
		box.Get(func() typeinfo.Manifest { return e.Manifest() }).WithName("types"),
	)
	v1.Resource("/version").WithActions(
		box.Get(func() core.Info { return core.GetInfo() }).WithName("version"),
	)
	return b
}

func accessLog(log *slog.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(ctx)
			if log != nil {
				r := box.GetRequest(ctx)
				log.Debug("diag request", slog.String("method", r.Method), slog.String("path", r.URL.Path))
			}
		}
	}
}

func prettyError(next box.H) box.H {
	return func(ctx context.Context) {
		next(ctx)
		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.MarshalWrite(w, map[string]any{
			"error": err.Error(),
		})
	}
}
