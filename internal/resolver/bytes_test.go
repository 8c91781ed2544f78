package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeFileClient struct {
	files   map[string][]byte
	nextID  int
	downErr error
}

func newFakeFileClient() *fakeFileClient {
	return &fakeFileClient{files: map[string][]byte{}}
}

func (f *fakeFileClient) UploadFile(_ context.Context, data []byte) (string, error) {
	f.nextID++
	id := fmt.Sprintf("file-%d", f.nextID)
	f.files[id] = data
	return id, nil
}

func (f *fakeFileClient) DownloadFile(_ context.Context, id string) ([]byte, error) {
	if f.downErr != nil {
		return nil, f.downErr
	}
	data, ok := f.files[id]
	if !ok {
		return nil, fmt.Errorf("no such file %s", id)
	}
	return data, nil
}

func TestBytesResolver_ShouldUpload(t *testing.T) {
	r := NewBytesResolver(newFakeFileClient())

	if !r.ShouldUpload([]byte{0x01}) {
		t.Error("raw bytes must be uploaded")
	}
	if r.ShouldUpload("text") || r.ShouldUpload(42) {
		t.Error("non-bytes values must not be uploaded")
	}
}

func TestBytesResolver_ShouldDownload(t *testing.T) {
	r := NewBytesResolver(newFakeFileClient())

	if !r.ShouldDownload("bytes:file-1") {
		t.Error("bytes reference must be downloaded")
	}
	if r.ShouldDownload("plain string") || r.ShouldDownload(42) {
		t.Error("plain values must not be downloaded")
	}
}

func TestBytesResolver_UploadDownloadRoundTrip(t *testing.T) {
	client := newFakeFileClient()
	r := NewBytesResolver(client)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	ref, err := r.Upload(context.Background(), payload)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !r.ShouldDownload(ref) {
		t.Fatalf("upload must return a bytes reference, got %q", ref)
	}

	data, err := r.Download(context.Background(), ref)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("round trip mismatch: %v != %v", data, payload)
	}
}

func TestBytesResolver_ResolveParameters(t *testing.T) {
	client := newFakeFileClient()
	client.files["file-7"] = []byte("attachment")

	r := NewBytesResolver(client)

	params := map[string]any{
		"message": "hello",
		"count":   float64(3),
		"payload": "bytes:file-7",
	}

	resolved, err := r.ResolveParameters(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved["message"] != "hello" || resolved["count"] != float64(3) {
		t.Error("plain parameters must pass through untouched")
	}
	data, ok := resolved["payload"].([]byte)
	if !ok || !bytes.Equal(data, []byte("attachment")) {
		t.Errorf("payload not resolved: %v", resolved["payload"])
	}
}

func TestBytesResolver_ResolveParameters_DownloadFailure(t *testing.T) {
	client := newFakeFileClient()
	client.downErr = errors.New("gateway unavailable")

	r := NewBytesResolver(client)

	_, err := r.ResolveParameters(context.Background(), map[string]any{"payload": "bytes:file-1"})
	if err == nil {
		t.Fatal("expected error when download fails")
	}
	if !errors.Is(err, client.downErr) {
		t.Errorf("expected wrapped download error, got %v", err)
	}
}
