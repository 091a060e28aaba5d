package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mw := ErrorHandlingMiddleware(logger)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	if env.Success {
		t.Error("panic response should have success=false")
	}

	if env.Message != "internal server error" {
		t.Errorf("panic internals leaked to client: %q", env.Message)
	}
}

func TestRespondWithData_EnvelopeShape(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithData(w, http.StatusCreated, "created", map[string]string{"id": "42"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	if !env.Success || env.Message != "created" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}
