package jobs

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestJobsHealthWithoutInspector(t *testing.T) {
	handler := NewHandler(nil, slog.Default())
	router := chi.NewRouter()
	router.Route("/jobs", handler.MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/jobs/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}
