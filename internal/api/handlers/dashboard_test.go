package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantLogged bool
	}{
		{name: "no dataset", err: fmt.Errorf("Load: %w", store.ErrDataNotFound), wantStatus: http.StatusServiceUnavailable},
		{name: "malformed dataset", err: fmt.Errorf("Load: %w", store.ErrMalformedData), wantStatus: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError, wantLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
			req = req.WithContext(logger.WithContext(req.Context(), zerolog.New(&buf)))
			rec := httptest.NewRecorder()

			writeServiceError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])

			if tt.wantLogged {
				assert.Contains(t, buf.String(), "Request failed")
				assert.Contains(t, buf.String(), "disk on fire")
				assert.Contains(t, buf.String(), `"path":"/api/kpis"`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
