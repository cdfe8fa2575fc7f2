package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

// File is a photo selected by the user. ContentType and Size are the declared
// metadata; Open gives access to the bytes and may fail.
type File interface {
	Name() string
	ContentType() string
	Size() int64
	Open(ctx context.Context) (io.ReadCloser, error)
}

// MemoryFile holds bytes already in memory
type MemoryFile struct {
	name        string
	contentType string
	size        int64
	data        []byte
}

// NewMemoryFile declares size as len(data)
func NewMemoryFile(name, contentType string, data []byte) *MemoryFile {
	return &MemoryFile{name: name, contentType: contentType, size: int64(len(data)), data: data}
}

// NewMemoryFileWithSize keeps a declared size that may differ from the data held,
// e.g. when a download was cut off at the upload limit.
func NewMemoryFileWithSize(name, contentType string, size int64, data []byte) *MemoryFile {
	return &MemoryFile{name: name, contentType: contentType, size: size, data: data}
}

func (f *MemoryFile) Name() string        { return f.name }
func (f *MemoryFile) ContentType() string { return f.contentType }
func (f *MemoryFile) Size() int64         { return f.size }

func (f *MemoryFile) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// ErrImagePartMissing is returned when a multipart body has no part with the
// requested field name
var ErrImagePartMissing = errors.New("image part missing")

// ReadMultipartImage streams the multipart body of r and returns the part named
// field. At most maxBytes+1 bytes are held, so an oversized photo is returned
// with a declared size above maxBytes and no more of the body is read. A body
// cut off by http.MaxBytesReader is reported the same way.
func ReadMultipartImage(r *http.Request, field string, maxBytes int64) (File, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, ErrImagePartMissing
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != field {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		size := int64(len(data))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if !errors.As(err, &tooLarge) {
				return nil, err
			}
			size = max(r.ContentLength, tooLarge.Limit+1, maxBytes+1)
		} else if size > maxBytes && r.ContentLength > size {
			size = r.ContentLength
		}
		return NewMemoryFileWithSize(part.FileName(), part.Header.Get("Content-Type"), size, data), nil
	}
}
