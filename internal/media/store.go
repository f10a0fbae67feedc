package media

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Store produces a reference for processed media data. The reference is a
// self-contained string an item carries in its media lists.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Inline stores media directly inside the reference as a base64 data URL,
// mirroring how the browser version of the application kept uploads. Suitable
// for local, single-user use only.
type Inline struct{}

// Put encodes the data as a data URL.
func (Inline) Put(_ context.Context, _ string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		return "", fmt.Errorf("inline media: missing content type")
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
