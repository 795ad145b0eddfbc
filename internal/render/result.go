package render

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
)

// Result holds a rendered document. Its methods never modify the
// underlying bytes, so they may be called any number of times.
type Result struct {
	data        []byte
	contentType string
	ext         string
	pages       int
}

// NewResult wraps data produced by a backend.
func NewResult(data []byte, contentType, ext string, pages int) *Result {
	return &Result{data: data, contentType: contentType, ext: ext, pages: pages}
}

// Bytes returns the raw document.
func (r *Result) Bytes() []byte {
	return r.data
}

// ContentType is the MIME type to serve the document with.
func (r *Result) ContentType() string {
	return r.contentType
}

// Ext is the file extension without the leading dot ("pdf", "html").
func (r *Result) Ext() string {
	return r.ext
}

// Pages is the number of pages the backend produced.
func (r *Result) Pages() int {
	return r.pages
}

// Base64 returns the document encoded as standard base64 (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the document.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full document to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the document to path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the document in bytes.
func (r *Result) Len() int {
	return len(r.data)
}
