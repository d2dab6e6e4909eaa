package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"organizer/pkg/planner"
	"organizer/pkg/planner/llm"
)

func newTestServer(responses []llm.CompletionResponse, errs []error) *Server {
	mock := planner.NewMockLLMClient(responses, errs)
	svc := planner.NewService(mock, planner.Options{})
	return NewServer(svc, false)
}

func newDisabledServer() *Server {
	svc := planner.NewService(nil, planner.Options{})
	return NewServer(svc, false)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	s := newTestServer(nil, nil)
	w := doRequest(s, http.MethodGet, "/", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
	if !strings.Contains(resp["message"], "mock-model") {
		t.Errorf("Expected message to name the model, got %s", resp["message"])
	}
}

func TestIndexUnknownPath(t *testing.T) {
	s := newTestServer(nil, nil)
	w := doRequest(s, http.MethodGet, "/nope", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetStructureSuccess(t *testing.T) {
	s := newTestServer([]llm.CompletionResponse{
		{Content: "Plan:\n[{\"source\":\"a.jpg\",\"destination\":\"Images/a.jpg\"}]"},
	}, nil)

	body := `{"files_info":[{"path":"a.jpg","name":"a.jpg"}],"prompt":"by type"}`
	w := doRequest(s, http.MethodPost, "/api/get-structure", body)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var entries []planner.MovePlanEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Failed to parse plan: %v", err)
	}
	if len(entries) != 1 || entries[0].Destination != "Images/a.jpg" {
		t.Errorf("Unexpected plan: %+v", entries)
	}
}

func TestGetStructureEmptyFiles(t *testing.T) {
	s := newTestServer(nil, nil)

	for _, body := range []string{
		`{"files_info":[],"prompt":"x"}`,
		`{"prompt":"x"}`,
	} {
		w := doRequest(s, http.MethodPost, "/api/get-structure", body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for body %s, got %d", body, w.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if resp["error"] != "No file information provided." {
			t.Errorf("Unexpected error message: %s", resp["error"])
		}
	}
}

func TestGetStructureInvalidBody(t *testing.T) {
	s := newTestServer(nil, nil)
	w := doRequest(s, http.MethodPost, "/api/get-structure", "{not json")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetStructureGenerationDisabled(t *testing.T) {
	s := newDisabledServer()

	body := `{"files_info":[{"path":"a","name":"a"}]}`
	w := doRequest(s, http.MethodPost, "/api/get-structure", body)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["error"] == "" {
		t.Error("Expected error message in response")
	}

	// The process stays alive; a second request still gets an answer.
	w2 := doRequest(s, http.MethodGet, "/", "")
	if w2.Code != http.StatusOK {
		t.Errorf("Expected server to stay responsive, got %d", w2.Code)
	}
}

func TestGetStructureExtractionError(t *testing.T) {
	s := newTestServer([]llm.CompletionResponse{
		{Content: "Sorry, I can't produce a plan."},
	}, nil)

	body := `{"files_info":[{"path":"a","name":"a"}]}`
	w := doRequest(s, http.MethodPost, "/api/get-structure", body)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["error"] != "No valid JSON list found in response." {
		t.Errorf("Unexpected error message: %s", resp["error"])
	}
}

func TestGetStructureMethodNotAllowed(t *testing.T) {
	s := newTestServer(nil, nil)
	w := doRequest(s, http.MethodGet, "/api/get-structure", "")

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestDeprecatedEndpoints(t *testing.T) {
	s := newTestServer(nil, nil)

	for _, path := range []string{"/api/execute-moves", "/api/rollback"} {
		w := doRequest(s, http.MethodPost, path, `{}`)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404 for %s, got %d", path, w.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if !strings.Contains(resp["error"], "deprecated") {
			t.Errorf("Expected deprecation message for %s, got %s", path, resp["error"])
		}
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(nil, nil)
	w := doRequest(s, http.MethodGet, "/api/healthz", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %s", resp["status"])
	}
	if resp["generation"] != "enabled" {
		t.Errorf("Expected generation enabled, got %s", resp["generation"])
	}
}

func TestHealthzDegraded(t *testing.T) {
	s := newDisabledServer()
	w := doRequest(s, http.MethodGet, "/api/healthz", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["generation"] != "disabled" {
		t.Errorf("Expected generation disabled, got %s", resp["generation"])
	}
}

func TestLogs(t *testing.T) {
	s := newTestServer(nil, nil)
	w := doRequest(s, http.MethodGet, "/api/logs", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var entries []map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Failed to parse log entries: %v", err)
	}
}

func TestLogsBadSince(t *testing.T) {
	s := newTestServer(nil, nil)
	w := doRequest(s, http.MethodGet, "/api/logs?since=garbage", "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestStartServerSignalsShutdownCompletion(t *testing.T) {
	s := newTestServer(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.StartServer(ctx, "127.0.0.1", 0); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}

	cancel()

	select {
	case <-s.ShutdownDone():
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(nil, nil)
	w := doRequest(s, http.MethodGet, "/", "")

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header to be set")
	}
}
