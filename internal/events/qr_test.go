package events

import (
	"testing"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckinQR(t *testing.T) {
	eventID := uuid.NewString()

	var gotContent string
	var gotSize int
	fake := func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
		gotContent = content
		gotSize = size
		assert.Equal(t, qrcode.Medium, level)
		return []byte("png-bytes"), nil
	}

	png, err := CheckinQR("https://events.cyberlab.example", eventID, 256, fake)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), png)
	assert.Equal(t, "https://events.cyberlab.example/checkin?event_id="+eventID, gotContent)
	assert.Equal(t, 256, gotSize)
}

func TestCheckinQR_InvalidSize(t *testing.T) {
	_, err := CheckinQR("https://events.cyberlab.example", uuid.NewString(), 0, nil)
	assert.Error(t, err)

	_, err = CheckinQR("https://events.cyberlab.example", uuid.NewString(), -10, nil)
	assert.Error(t, err)
}

func TestCheckinQR_RealEncoder(t *testing.T) {
	png, err := CheckinQR("https://events.cyberlab.example", uuid.NewString(), 128, nil)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
