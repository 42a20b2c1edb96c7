package qrcode

import (
	"encoding/base64"
	"fmt"
	"html/template"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered edge length in pixels.
const DefaultSize = 160

// DataURI encodes text as a PNG QR code suitable for an <img src>.
// PRE: text is non-empty; size > 0
// POST: returns a data:image/png;base64 URL
func DataURI(text string, size int) (template.URL, error) {
	code, err := qr.New(text, qr.Medium)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	png, err := code.PNG(size)
	if err != nil {
		return "", fmt.Errorf("qr png: %w", err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}
