// Package qr renders payment QR codes. Rendering is a pure function of the
// payload; no side effects.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// RenderPaymentQR encodes the payment payload into a PNG image.
func RenderPaymentQR(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
