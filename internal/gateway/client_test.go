package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andrx/courier/internal/domain"
)

func TestClient_UpdateRequest(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	err := client.UpdateRequest(context.Background(), "req-1", domain.StatusSuccess, "5", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Errorf("expected PATCH, got %s", gotMethod)
	}
	if gotPath != "/api/v1/requests/req-1" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotBody["status"] != "SUCCESS" || gotBody["output"] != "5" {
		t.Errorf("unexpected body %v", gotBody)
	}
}

func TestClient_UpdateRequest_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": {"code": "ALREADY_COMPLETED", "message": "request is terminal"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	err := client.UpdateRequest(context.Background(), "req-1", domain.StatusSuccess, "", "")

	if !errors.Is(err, ErrClient) {
		t.Fatalf("expected ErrClient, got %v", err)
	}
	if errors.Is(err, ErrConnection) {
		t.Error("4xx must not be a connection error")
	}
}

func TestClient_UpdateRequest_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	err := client.UpdateRequest(context.Background(), "req-1", domain.StatusSuccess, "", "")

	if err == nil {
		t.Fatal("expected error for 500")
	}
	// 5xx — обычная retriable ошибка, не из таксономии.
	if errors.Is(err, ErrClient) || errors.Is(err, ErrConnection) {
		t.Errorf("5xx must be a plain error, got %v", err)
	}
}

func TestClient_UpdateRequest_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close() // сервер мёртв

	client := NewClient(server.URL, time.Second)
	err := client.UpdateRequest(context.Background(), "req-1", domain.StatusSuccess, "", "")

	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestClient_GetVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/version" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"version": "3.2.1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	version, err := client.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != "3.2.1" {
		t.Errorf("expected version 3.2.1, got %s", version)
	}
}

func TestClient_Files(t *testing.T) {
	stored := map[string][]byte{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/files":
			data, _ := io.ReadAll(r.Body)
			stored["file-1"] = data
			json.NewEncoder(w).Encode(map[string]string{"id": "file-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/files/file-1":
			w.Write(stored["file-1"])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	payload := []byte{0x01, 0x02, 0x03}
	id, err := client.UploadFile(context.Background(), payload)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if id != "file-1" {
		t.Errorf("expected id file-1, got %s", id)
	}

	data, err := client.DownloadFile(context.Background(), id)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("round trip mismatch: %v != %v", data, payload)
	}
}
