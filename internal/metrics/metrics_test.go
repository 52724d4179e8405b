package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/stickers/{uuid}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/stickers/{uuid}", "404"))
	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/stickers/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/stickers/{uuid}", "404"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(shares.WithLabelValues("chooser", "true"))
	RecordShare("", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(shares.WithLabelValues("chooser", "true"))-before)

	before = testutil.ToFloat64(exports.WithLabelValues("false"))
	RecordExport(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(exports.WithLabelValues("false"))-before)

	before = testutil.ToFloat64(imports.WithLabelValues("added"))
	RecordImport("added")
	assert.Equal(t, 1.0, testutil.ToFloat64(imports.WithLabelValues("added"))-before)
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordExport(true)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rays_export_stickers_total")
}
