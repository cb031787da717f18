package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ParseDataURI splits a "data:<mimetype>;base64,<encoded_data>" payload
// into its media type and decoded bytes.
func ParseDataURI(uri string) (mimeType string, data []byte, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("not a data URI")
	}

	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ",")
	if sep == -1 {
		return "", nil, fmt.Errorf("malformed data URI: missing comma")
	}

	meta := rest[:sep]
	payload := rest[sep+1:]

	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("unsupported data URI encoding: expected base64")
	}
	mimeType = strings.TrimSuffix(meta, ";base64")
	if mimeType == "" {
		return "", nil, fmt.Errorf("malformed data URI: missing media type")
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("malformed data URI payload: %w", err)
	}

	return mimeType, data, nil
}
