package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/trio-pos/api/responses"
	"github.com/angelmondragon/trio-pos/pkg/config"
	pkgerrors "github.com/angelmondragon/trio-pos/pkg/errors"
	"github.com/angelmondragon/trio-pos/pkg/logger"
)

const envHeader = "X-TrioPOS-Env"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the local settings store. Memory stores have no pinger and are always ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "local store unavailable").
					WithDetails(map[string]any{"dependency": cfg.Store.Driver}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "terminal_id": cfg.App.TerminalID})
	}
}
