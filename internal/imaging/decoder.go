// Package imaging turns citizen-submitted photo payloads into bytes the rest
// of the pipeline can use. Submissions arrive as data URIs or bare base64;
// the two concerns here — is the payload valid base64, and do the decoded
// bytes parse as an image — fail independently and are reported separately.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"
)

var (
	// ErrEmptyPayload is returned when the payload contains no data.
	ErrEmptyPayload = errors.New("imaging: empty image payload")

	// ErrInvalidBase64 is returned when the payload is not valid base64.
	ErrInvalidBase64 = errors.New("imaging: payload is not valid base64")

	// ErrUnsupportedImage is returned when the bytes do not parse as a
	// supported image format.
	ErrUnsupportedImage = errors.New("imaging: unsupported or corrupt image data")
)

// DecodePayload strips an optional data-URI prefix ("data:image/...;base64,")
// and base64-decodes the remainder. The returned bytes are suitable for blob
// upload regardless of whether they parse as an image.
func DecodePayload(payload string) ([]byte, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}
	payload = strings.TrimSpace(payload)

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}
	return raw, nil
}

// Normalize parses raw image bytes and re-encodes them as JPEG, the one
// format the inference service is guaranteed to accept. The source format
// may be JPEG, PNG or GIF.
func Normalize(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("imaging: jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
