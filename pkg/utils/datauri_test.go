package utils

import (
	"encoding/base64"
	"testing"
)

func TestParseDataURI(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 fake content")
	encoded := base64.StdEncoding.EncodeToString(pdfBytes)

	tests := []struct {
		name     string
		uri      string
		wantMime string
		wantErr  bool
	}{
		{
			name:     "valid pdf",
			uri:      "data:application/pdf;base64," + encoded,
			wantMime: "application/pdf",
		},
		{
			name:     "valid png",
			uri:      "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 0x50}),
			wantMime: "image/png",
		},
		{
			name:    "not a data uri",
			uri:     "https://example.com/contract.pdf",
			wantErr: true,
		},
		{
			name:    "missing comma",
			uri:     "data:application/pdf;base64",
			wantErr: true,
		},
		{
			name:    "not base64 encoded",
			uri:     "data:text/plain,hello",
			wantErr: true,
		},
		{
			name:    "missing media type",
			uri:     "data:;base64," + encoded,
			wantErr: true,
		},
		{
			name:    "invalid payload",
			uri:     "data:application/pdf;base64,!!!not-base64!!!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, data, err := ParseDataURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got mime=%q", mime)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mime != tt.wantMime {
				t.Errorf("mime = %q, want %q", mime, tt.wantMime)
			}
			if len(data) == 0 {
				t.Error("decoded payload is empty")
			}
		})
	}

	t.Run("round trip preserves bytes", func(t *testing.T) {
		_, data, err := ParseDataURI("data:application/pdf;base64," + encoded)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != string(pdfBytes) {
			t.Errorf("decoded = %q, want %q", data, pdfBytes)
		}
	})
}
