package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTranslateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Q      string `json:"q"`
			Source string `json:"source"`
			Target string `json:"target"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Q != "good morning" || req.Source != "en" || req.Target != "pt" {
			t.Errorf("unexpected payload: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "bom dia"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", "pt", time.Second, nil)
	res := client.Translate(context.Background(), "good morning")
	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.Value() != "bom dia" {
		t.Fatalf("unexpected translation: %q", res.Value())
	}
}

func TestTranslateEmptyInputSkipsNetwork(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "en", "pt", time.Second, nil)
	res := client.Translate(context.Background(), "   ")
	if res.Failed || res.Value() != "" {
		t.Fatalf("empty input must yield empty success, got %+v", res)
	}
}

func TestTranslateServerErrorIsSoftFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "engine overloaded"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", "pt", time.Second, nil)
	res := client.Translate(context.Background(), "hello")
	if !res.Failed {
		t.Fatal("expected soft failure")
	}
	if !strings.Contains(res.Value(), "[translation failed:") || !strings.Contains(res.Value(), "engine overloaded") {
		t.Fatalf("unexpected marker: %q", res.Value())
	}
}

func TestTranslateUnreachableBackendIsSoftFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "en", "pt", 200*time.Millisecond, nil)
	res := client.Translate(context.Background(), "hello")
	if !res.Failed {
		t.Fatal("expected soft failure for unreachable backend")
	}
	if !strings.HasPrefix(res.Value(), "[translation failed:") {
		t.Fatalf("unexpected marker: %q", res.Value())
	}
}
