package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/comcol/comcol-backend/api/responses"
	"github.com/comcol/comcol-backend/pkg/config"
	pkgerrors "github.com/comcol/comcol-backend/pkg/errors"
	"github.com/comcol/comcol-backend/pkg/db"
	"github.com/comcol/comcol-backend/pkg/logger"
	"github.com/comcol/comcol-backend/pkg/storage"
)

const readyCheckTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Comcol-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and the blob store; a failure of either
// reports the service as not ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, blobP storage.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Comcol-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "health.database", err)
				}
			} else {
				checks["database"] = "up"
			}
		}
		if blobP != nil {
			if err := blobP.Ping(ctx); err != nil {
				checks["blob_store"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "health.blob_store", err)
				}
			} else {
				checks["blob_store"] = "up"
			}
		}

		if !healthy {
			responses.WriteError(ctx, nil, w,
				pkgerrors.New(pkgerrors.CodeDependency, "service not ready").WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
