// Package qrcode renders passport and batch links as PNG QR codes.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const DefaultSize = 300

// Generator encodes content at high error correction and scales it to Size pixels square.
type Generator struct {
	Size int
}

// NewGenerator returns a generator producing size x size images.
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{Size: size}
}

// PNG renders content as a PNG image.
func (g *Generator) PNG(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("qrcode: empty content")
	}
	size := DefaultSize
	if g != nil && g.Size > 0 {
		size = g.Size
	}

	code, err := qr.Encode(content, qr.H, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode: %w", err)
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: scale: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qrcode: png: %w", err)
	}
	return buf.Bytes(), nil
}

// PassportURL is the public link encoded in a product's QR code.
func PassportURL(appURL, passportID string) string {
	return strings.TrimRight(strings.TrimSpace(appURL), "/") + "/dpp/" + passportID
}

// BatchURL is the public link encoded in a batch QR code.
func BatchURL(apiURL string, batchID uint) string {
	return fmt.Sprintf("%s/public/dpp/batch/%d", strings.TrimRight(strings.TrimSpace(apiURL), "/"), batchID)
}
