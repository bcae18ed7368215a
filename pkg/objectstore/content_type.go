package objectstore

import (
	"bytes"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType is used when nothing more specific can be detected.
const DefaultContentType = "application/octet-stream"

// sniffLen matches the mimetype default read limit.
const sniffLen = 3072

// DetectContentType sniffs the first bytes of r and returns the detected MIME type
// together with a reader that still yields the complete payload.
func DetectContentType(r io.Reader) (string, io.Reader, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	header = header[:n]

	contentType := DefaultContentType
	if n > 0 {
		contentType = mimetype.Detect(header).String()
	}
	return contentType, io.MultiReader(bytes.NewReader(header), r), nil
}

// DetectFileContentType returns the MIME type of the file at path.
func DetectFileContentType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}
