package events

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

// QREncoder generates a QR PNG for the given content. Matches qrcode.Encode so
// tests can inject a fake.
type QREncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// CheckinQR encodes the public check-in URL for an event as a PNG QR code.
func CheckinQR(baseURL, eventID string, size int, encode QREncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid size: must be positive")
	}
	if encode == nil {
		encode = qrcode.Encode
	}
	return encode(baseURL+"/checkin?event_id="+eventID, qrcode.Medium, size)
}
