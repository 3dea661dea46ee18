package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"infinite-experiment/gazetteer/internal/models/entities"
)

func TestHealthCheckHandler(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus string
		wantCode   int
	}{
		{name: "database up", wantStatus: "ok", wantCode: http.StatusOK},
		{name: "database down", pingErr: errors.New("connection refused"), wantStatus: "down", wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			if err != nil {
				t.Fatalf("Failed to create sqlmock: %v", err)
			}
			defer mockDB.Close()

			ping := mock.ExpectPing()
			if tt.pingErr != nil {
				ping.WillReturnError(tt.pingErr)
			}

			handler := HealthCheckHandler(sqlx.NewDb(mockDB, "sqlmock"), time.Now().Add(-time.Minute))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("Expected status code %d, got %d", tt.wantCode, rec.Code)
			}

			var resp entities.HealthCheckResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, resp.Status)
			}
			if resp.Services["database"].Status != tt.wantStatus {
				t.Errorf("Expected database status %q, got %q", tt.wantStatus, resp.Services["database"].Status)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unmet sqlmock expectations: %v", err)
			}
		})
	}
}
