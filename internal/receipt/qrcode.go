// Package receipt renders the QR code printed on order confirmations.
package receipt

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const Size = 256

type QRGenerator struct {
	BaseURL string
}

// Link is the order-success page the code points at.
func (g QRGenerator) Link(orderID string) string {
	return fmt.Sprintf("%s/order-success/%s", strings.TrimRight(g.BaseURL, "/"), orderID)
}

// Generate returns a PNG.
func (g QRGenerator) Generate(orderID string) ([]byte, error) {
	return qrcode.Encode(g.Link(orderID), qrcode.Medium, Size)
}
