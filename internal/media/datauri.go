package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// DataURIStore inlines images as base64 data URIs instead of persisting
// them anywhere. The on-device client uses it when no server is reachable.
type DataURIStore struct{}

func (DataURIStore) Save(_ context.Context, _ string, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

// Delete is a no-op: the image lives inside the item itself.
func (DataURIStore) Delete(context.Context, string) error {
	return nil
}

// IsDataURI reports whether url carries its image inline.
func IsDataURI(url string) bool {
	return strings.HasPrefix(url, "data:")
}

// DecodeDataURI splits a base64 data URI into its content type and bytes.
func DecodeDataURI(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data uri")
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data uri is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return contentType, data, nil
}

// ExtensionFor returns a file extension for an allowed image content type.
func ExtensionFor(contentType string) (string, bool) {
	for _, ext := range []string{".jpg", ".png", ".gif", ".webp"} {
		if contentTypes[ext] == contentType {
			return ext, true
		}
	}
	return "", false
}
