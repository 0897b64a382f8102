package controllers

import (
	"net/http"

	"github.com/comcol/comcol-backend/api/middleware"
	"github.com/comcol/comcol-backend/api/responses"
	"github.com/comcol/comcol-backend/pkg/config"
)

type settingsResponse struct {
	Description string `json:"description"`
	ReadOnly    bool   `json:"read_only"`
}

// Settings handles GET /settings. ReadOnly reflects the gate's current state,
// not the value at startup.
func Settings(cfg config.SettingsConfig, gate middleware.WriteGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readOnly := false
		if gate != nil {
			readOnly = !gate.Writable()
		}
		responses.WriteSuccess(w, settingsResponse{
			Description: cfg.Description,
			ReadOnly:    readOnly,
		})
	}
}
