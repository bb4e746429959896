package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/bidbot/internal/config"
	"github.com/sandevgo/bidbot/internal/core"
)

func newTestAssist(baseURL string) *Assist {
	return NewAssist(&config.AssistConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestComplete_Success(t *testing.T) {
	var gotReq core.CompletionRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/assist" {
			t.Errorf("path = %q, want /v1/assist", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(core.CompletionResult{
			Response:     "You have 3 active jobs.",
			QuickReplies: []string{"Show them"},
		})
	}))
	defer srv.Close()

	a := newTestAssist(srv.URL)
	result, err := a.Complete(context.Background(), core.CompletionRequest{
		Message: "how busy am I",
		Context: core.UserContext{BusinessName: "Mikulski Roofing", ActiveJobs: 3},
		History: []core.Message{{Role: core.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Message != "how busy am I" {
		t.Errorf("forwarded message = %q", gotReq.Message)
	}
	if gotReq.Context.BusinessName != "Mikulski Roofing" {
		t.Errorf("forwarded context = %+v", gotReq.Context)
	}
	if len(gotReq.History) != 1 {
		t.Errorf("forwarded history = %v", gotReq.History)
	}
	if result.Response != "You have 3 active jobs." {
		t.Errorf("response = %q", result.Response)
	}
	if len(result.QuickReplies) != 1 || result.QuickReplies[0] != "Show them" {
		t.Errorf("quick replies = %v", result.QuickReplies)
	}
}

func TestComplete_HTTPErrorIsNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestAssist(srv.URL)
	_, err := a.Complete(context.Background(), core.CompletionRequest{Message: "hello there"})
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on status errors)", calls)
	}
}

func TestComplete_TransportErrorIsRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			// drop the connection so the client sees a transport error
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("response writer is not a hijacker")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack: %v", err)
			}
			conn.Close()
			return
		}
		json.NewEncoder(w).Encode(core.CompletionResult{Response: "recovered"})
	}))
	defer srv.Close()

	a := newTestAssist(srv.URL)
	result, err := a.Complete(context.Background(), core.CompletionRequest{Message: "flaky"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if result.Response != "recovered" {
		t.Errorf("response = %q", result.Response)
	}
}

func TestComplete_EmptyResponseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := newTestAssist(srv.URL)
	if _, err := a.Complete(context.Background(), core.CompletionRequest{Message: "hi"}); err == nil {
		t.Fatal("expected error for empty response body")
	}
}

func TestComplete_MalformedJSONIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json {{{`))
	}))
	defer srv.Close()

	a := newTestAssist(srv.URL)
	if _, err := a.Complete(context.Background(), core.CompletionRequest{Message: "hi"}); err == nil {
		t.Fatal("expected error for malformed response body")
	}
}
