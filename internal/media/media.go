// Package media uploads submission photos to Cloudinary. Uploads are
// a strict prerequisite for filing a submission: every photo must land
// before the report is sent, and any failure aborts the whole
// submission with an upload-specific error.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// UploadError marks a failure in the photo-upload phase, before any
// submission call was attempted.
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Uploader posts images to Cloudinary's unsigned upload endpoint.
type Uploader struct {
	CloudName    string
	UploadPreset string
	HTTPClient   *http.Client
	Log          *logrus.Logger

	// Endpoint overrides the Cloudinary URL, for tests.
	Endpoint string
}

// New creates an uploader for the given cloud and preset.
func New(cloudName, uploadPreset string) *Uploader {
	return &Uploader{
		CloudName:    cloudName,
		UploadPreset: uploadPreset,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
		Log:          logrus.StandardLogger(),
	}
}

func (u *Uploader) endpoint() string {
	if u.Endpoint != "" {
		return u.Endpoint
	}
	return fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", u.CloudName)
}

// Upload sends one image and returns its hosted URL.
func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return "", &UploadError{File: name, Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", &UploadError{File: name, Err: err}
	}
	if err := form.WriteField("upload_preset", u.UploadPreset); err != nil {
		return "", &UploadError{File: name, Err: err}
	}
	if err := form.Close(); err != nil {
		return "", &UploadError{File: name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint(), &buf)
	if err != nil {
		return "", &UploadError{File: name, Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	client := u.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &UploadError{File: name, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &UploadError{File: name, Err: fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}
	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &UploadError{File: name, Err: err}
	}
	if out.SecureURL == "" {
		return "", &UploadError{File: name, Err: fmt.Errorf("no secure_url in response")}
	}
	return out.SecureURL, nil
}

// UploadFiles uploads every path and returns hosted URLs in input
// order. The first failure aborts: submissions never go out with a
// partial photo set.
func (u *Uploader) UploadFiles(ctx context.Context, paths []string) ([]string, error) {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, &UploadError{File: p, Err: err}
		}
		hosted, err := u.Upload(ctx, p, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		u.log().WithFields(logrus.Fields{"file": p, "url": hosted}).Debug("photo uploaded")
		urls = append(urls, hosted)
	}
	return urls, nil
}

func (u *Uploader) log() *logrus.Logger {
	if u.Log != nil {
		return u.Log
	}
	return logrus.StandardLogger()
}
