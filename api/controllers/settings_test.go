package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comcol/comcol-backend/pkg/config"
	"github.com/comcol/comcol-backend/pkg/types"
)

type fixedGate bool

func (g fixedGate) Writable() bool { return bool(g) }

func TestSettingsHandler(t *testing.T) {
	t.Parallel()

	cfg := config.SettingsConfig{Description: "Vintage computing archive"}
	handler := Settings(cfg, fixedGate(false))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload: %v", envelope.Data)
	}
	if data["description"] != "Vintage computing archive" {
		t.Fatalf("unexpected description %v", data["description"])
	}
	if data["read_only"] != true {
		t.Fatalf("expected read_only true, got %v", data["read_only"])
	}
}
