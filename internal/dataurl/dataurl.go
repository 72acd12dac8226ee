// Package dataurl converts image bytes to and from base64 data URLs.
package dataurl

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

const prefix = "data:"

// ErrMalformed is returned by Decode when the input is not a base64 data URL.
var ErrMalformed = errors.New("malformed data URL")

// Encode builds data:<mime>;base64,<payload>.
func Encode(mime string, data []byte) string {
	return prefix + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SniffMIME detects the content type of data. Parameters such as charset are
// stripped so the result can be embedded in a data URL.
func SniffMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if semi := strings.IndexByte(mime, ';'); semi >= 0 {
		mime = mime[:semi]
	}
	return strings.TrimSpace(mime)
}

// IsImage reports whether mime names an image type.
func IsImage(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// Decode splits a data URL into its payload bytes and MIME type.
func Decode(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, prefix) {
		return nil, "", ErrMalformed
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return nil, "", ErrMalformed
	}
	meta := s[len(prefix):idx]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", ErrMalformed
	}
	mime := strings.TrimSuffix(meta, ";base64")

	b, err := base64.StdEncoding.DecodeString(s[idx+1:])
	if err != nil {
		return nil, "", err
	}
	return b, mime, nil
}
