package middleware

import (
	"net/http"

	"github.com/comcol/comcol-backend/api/responses"
	pkgerrors "github.com/comcol/comcol-backend/pkg/errors"
	"github.com/comcol/comcol-backend/pkg/logger"
)

// WriteGate rejects every request through it while the catalog is read-only.
// The check runs before body parsing, so gated requests are refused whole.
type WriteGate interface {
	Writable() bool
}

func RequireWritable(gate WriteGate, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate != nil && !gate.Writable() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeReadOnly, "catalog is in read-only mode"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
