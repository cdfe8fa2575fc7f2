package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

func multipartRequest(t *testing.T, field, contentType string, size int) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	mw.WriteField("note", "first")
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="face.jpg"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(bytes.Repeat([]byte{0xAB}, size))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadMultipartImage(t *testing.T) {
	// a body cap hit while the part is read counts as oversized
	tests := []struct {
		name     string
		field    string
		size     int
		bodyCap  int64
		limit    int64
		wantErr  error
		overSize bool
	}{
		{name: "within limit", field: "image", size: 80},
		{name: "exactly at limit", field: "image", size: 100},
		{name: "over limit", field: "image", size: 500, overSize: true},
		{name: "cut off by body cap", field: "image", size: 800, bodyCap: 600, limit: 1000, overSize: true},
		{name: "missing part", field: "photo", size: 10, wantErr: ErrImagePartMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, tt.field, "image/jpeg", tt.size)
			if tt.bodyCap > 0 {
				req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, tt.bodyCap)
			}

			limit := tt.limit
			if limit == 0 {
				limit = 100
			}
			file, err := ReadMultipartImage(req, "image", limit)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if file.ContentType() != "image/jpeg" || file.Name() != "face.jpg" {
				t.Errorf("Unexpected metadata %q %q", file.ContentType(), file.Name())
			}
			if tt.overSize {
				if file.Size() <= limit {
					t.Errorf("Expected declared size above the limit, got %d", file.Size())
				}
				return
			}
			if file.Size() != int64(tt.size) {
				t.Errorf("Expected size %d, got %d", tt.size, file.Size())
			}

			rc, err := file.Open(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			defer rc.Close()
			data, _ := io.ReadAll(rc)
			if len(data) != tt.size {
				t.Errorf("Expected %d bytes, got %d", tt.size, len(data))
			}
		})
	}
}

func TestReadMultipartImage_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	if _, err := ReadMultipartImage(req, "image", 100); err == nil {
		t.Error("Expected non multipart body to fail")
	}
}
