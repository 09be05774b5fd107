package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestAndTraceHonoursInboundIDs(t *testing.T) {
	var gotReq, gotTrace string
	h := WithRequestAndTrace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = RequestIDFromContext(r.Context())
		gotTrace = TraceIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderTraceID, "trace-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if gotReq != "req-1" || gotTrace != "trace-1" {
		t.Fatalf("ids not propagated: %q %q", gotReq, gotTrace)
	}
	if rec.Header().Get(HeaderRequestID) != "req-1" {
		t.Fatalf("request id not echoed")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status not passed through: %d", rec.Code)
	}
}

func TestWithRequestAndTraceGeneratesIDs(t *testing.T) {
	var gotReq string
	h := WithRequestAndTrace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = RequestIDFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if gotReq == "" || rec.Header().Get(HeaderRequestID) != gotReq {
		t.Fatalf("expected generated request id to be echoed, got %q / %q", gotReq, rec.Header().Get(HeaderRequestID))
	}
}
