package markup

import (
	"bytes"
	"net/http"
	"strings"
)

// fallbackMediaType is assumed for payloads that do not sniff as an image.
const fallbackMediaType = "image/png"

// MediaType sniffs the image type of data. SVG is recognised by its root
// element; other formats by their magic numbers.
func MediaType(data []byte) string {
	if isSVG(data) {
		return "image/svg+xml"
	}
	if mt := http.DetectContentType(data); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return fallbackMediaType
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), 512)]
	head = bytes.TrimSpace(head)
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	return bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg"))
}
