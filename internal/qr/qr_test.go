package qr

import (
	"bytes"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderPaymentQR(t *testing.T) {
	png, err := RenderPaymentQR("PAYTO:PS Fast Pay;CARD:4276 0000 0000 0000;AMOUNT:1400 RUB")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("output is not a PNG, first bytes: %x", png[:min(8, len(png))])
	}
}

func TestRenderPaymentQREmptyPayload(t *testing.T) {
	if _, err := RenderPaymentQR(""); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
