package transport

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riverbend/marketsim/internal/registry"
)

func TestPlainHTTPGetsHealthOK(t *testing.T) {
	reg := registry.New(100)
	logger := log.New(io.Discard, "", 0)
	h := Handler(reg, "lws-minimal", 0, logger)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Fatalf("body = %s, want {\"status\":\"ok\"}", rec.Body.String())
	}
	if reg.Len() != 0 {
		t.Fatal("a plain HTTP request should not create a session")
	}
}
