package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"

	"eventra/model"

	"github.com/skip2/go-qrcode"
)

// GenerateQRCode renders content as a size x size PNG.
func GenerateQRCode(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateTicketQRCode encodes the ticket payload as JSON inside a QR PNG.
func GenerateTicketQRCode(code model.TicketCode, size int) ([]byte, error) {
	payload, err := json.Marshal(code)
	if err != nil {
		return nil, fmt.Errorf("encode ticket code: %w", err)
	}
	img, err := GenerateQRCode(string(payload), size)
	if err != nil {
		return nil, fmt.Errorf("render qr for %s: %w", code.TicketId, err)
	}
	return img, nil
}
