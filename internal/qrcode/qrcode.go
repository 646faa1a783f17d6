package qrcode

import (
	"net/url"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// JoinURL is the link players scan to open a match.
func JoinURL(base, matchID string) string {
	return strings.TrimRight(base, "/") + "/?match=" + url.QueryEscape(matchID)
}

// Generate creates a QR code PNG image for the given URL.
func Generate(link string) ([]byte, error) {
	return qr.Encode(link, qr.Medium, defaultSize)
}
