// Package qr derives the one-time join URL shown to the mobile device and
// renders it as a scannable code.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// BuildJoinURL composes the mobile join URL from the advertised scheme,
// the local address the user picked, and the listen port. Which address
// is advertised is a presentation choice; it does not identify the
// session.
func BuildJoinURL(scheme, address string, port int) string {
	return fmt.Sprintf("%s://%s:%d/mobile", scheme, address, port)
}

// Render encodes url as a PNG QR code and returns it as a data URL ready
// for an <img> tag.
func Render(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, imageSize)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
