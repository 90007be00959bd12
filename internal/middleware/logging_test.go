package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/metrics"
)

func TestResponseWriterWriteHeader(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusNotFound)
	}
}

func TestResponseWriterWrite(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())

	n, err := rw.Write([]byte("test data"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if rw.bytesWritten != int64(n) {
		t.Errorf("bytesWritten = %d, want %d", rw.bytesWritten, n)
	}
	if rw.statusCode != http.StatusOK || !rw.wroteHeader {
		t.Errorf("implicit header not recorded: status=%d wroteHeader=%v", rw.statusCode, rw.wroteHeader)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/metrics", "/metrics"},
		{"/a\nb", "/a b"},
		{"/a\r\nb", "/a  b"},
		{"\x1b[31mred", "[31mred"},
		{"nul\x00l", "null"},
		{"tab\there", "tab\there"},
		{"bell\x07", "bell"},
	}

	for _, tt := range tests {
		if got := sanitizeLogField(tt.input); got != tt.expected {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLoggerCountsByRoute(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Name("health")
	r.Use(Logger())

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("health", "200"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("health", "200"))
	if after != before+1 {
		t.Errorf("requests counter = %v, want %v", after, before+1)
	}
}

func TestRouteNameWithoutRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	if got := routeName(req); got != "other" {
		t.Errorf("routeName = %q, want other", got)
	}
}
