package qrbill

import qrcode "github.com/skip2/go-qrcode"

// qrPixels is the rendered edge length of the code image. The print target
// is 46x46mm; 512px keeps modules crisp at 300dpi.
const qrPixels = 512

// EncodePNG renders the Swiss Payment Code as a PNG. Error correction level
// M is mandated by the payment standard.
func EncodePNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, qrPixels)
}
