package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logAdapter "github.com/bft-labs/lockstep/internal/adapters/log"
)

func TestUploader_Upload(t *testing.T) {
	var gotName, gotContent, gotPath string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName = header.Filename
		gotContent = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"info":"file 'sample.txt' saved at 'uploads/sample.txt'"}`))
	}))
	defer ts.Close()

	u := NewUploader(ts.Client(), logAdapter.NewNoopLogger())
	receipt, err := u.Upload(context.Background(), ts.URL+"/upload-file/", "dir/sample.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if gotPath != "/upload-file/" {
		t.Errorf("path = %q, want /upload-file/", gotPath)
	}
	if gotName != "sample.txt" {
		t.Errorf("filename = %q, want sample.txt", gotName)
	}
	if gotContent != "hello" {
		t.Errorf("content = %q, want hello", gotContent)
	}
	if receipt.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", receipt.StatusCode)
	}
	if receipt.Info != "file 'sample.txt' saved at 'uploads/sample.txt'" {
		t.Errorf("Info = %q", receipt.Info)
	}
}

func TestUploader_UploadServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"disk full"}`))
	}))
	defer ts.Close()

	u := NewUploader(ts.Client(), logAdapter.NewNoopLogger())
	receipt, err := u.Upload(context.Background(), ts.URL, "a.txt", strings.NewReader("x"))
	if err == nil {
		t.Fatal("Upload() expected error for 500")
	}
	if receipt.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", receipt.StatusCode)
	}
	if !strings.Contains(receipt.Body, "disk full") {
		t.Errorf("Body = %q, want error body", receipt.Body)
	}
}
