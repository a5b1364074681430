package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestUploader(t *testing.T, handler http.HandlerFunc) *Uploader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	u := New("test-cloud", "test-preset")
	u.Endpoint = srv.URL
	return u
}

func TestUpload(t *testing.T) {
	u := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("upload_preset"); got != "test-preset" {
			t.Errorf("upload_preset = %q", got)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part: %v", err)
		} else {
			f.Close()
			if header.Filename != "site.jpg" {
				t.Errorf("filename = %q", header.Filename)
			}
		}
		w.Write([]byte(`{"secure_url":"https://res.cloudinary.example/site.jpg"}`))
	})
	url, err := u.Upload(context.Background(), "/photos/site.jpg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://res.cloudinary.example/site.jpg" {
		t.Fatalf("url = %q", url)
	}
}

func TestUploadRejected(t *testing.T) {
	u := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid preset"}}`))
	})
	_, err := u.Upload(context.Background(), "p.jpg", strings.NewReader("x"))
	var upErr *UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want *UploadError", err)
	}
}

func TestUploadFilesOrderAndAbort(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.jpg", "b.jpg"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(name), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		paths = append(paths, p)
	}

	u := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		_, header, _ := r.FormFile("file")
		w.Write([]byte(`{"secure_url":"https://res.cloudinary.example/` + header.Filename + `"}`))
	})
	urls, err := u.UploadFiles(context.Background(), paths)
	if err != nil {
		t.Fatalf("upload files: %v", err)
	}
	if len(urls) != 2 || !strings.HasSuffix(urls[0], "a.jpg") || !strings.HasSuffix(urls[1], "b.jpg") {
		t.Fatalf("urls = %v", urls)
	}

	_, err = u.UploadFiles(context.Background(), append(paths, filepath.Join(dir, "missing.jpg")))
	var upErr *UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want *UploadError for missing file", err)
	}
}
