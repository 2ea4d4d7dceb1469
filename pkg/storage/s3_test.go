package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateResourceFileType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		filename    string
		want        bool
	}{
		{"pdf by content type", "application/pdf", "slides", true},
		{"pdf by extension", "", "lab-guide.pdf", true},
		{"zip archive", "application/zip", "tools.zip", true},
		{"uppercase extension", "", "NOTES.MD", true},
		{"octet-stream with allowed extension", "application/octet-stream", "deck.pptx", true},
		{"executable", "application/x-msdownload", "payload.exe", false},
		{"no type no extension", "", "README", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateResourceFileType(tt.contentType, tt.filename))
		})
	}
}

func TestContentTypeForFilename(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeForFilename("guide.pdf"))
	assert.Equal(t, "image/jpeg", ContentTypeForFilename("photo.JPEG"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("unknown.bin"))
}

func TestResourceKey(t *testing.T) {
	key := ResourceKey("b2f9a8d0-0000-0000-0000-000000000000", "lab.pdf")
	assert.Equal(t, "resources/b2f9a8d0-0000-0000-0000-000000000000/lab.pdf", key)

	// Path components in the filename are stripped.
	key = ResourceKey("e1", "../../etc/passwd")
	assert.Equal(t, "resources/e1/passwd", key)
}
