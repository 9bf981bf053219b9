package session

import (
	"bytes"
	"strings"
)

// blockMarkers are lower-case fragments that indicate a page served a JS
// challenge or CAPTCHA wall instead of content.
var blockMarkers = []string{
	"enable javascript",
	"requires javascript",
	"please enable js",
	"captcha",
	"cf-chl",
	"cloudflare",
	"challenge-form",
}

// blockDetector inspects response bodies for signals that the real content
// is gated behind JavaScript execution or a bot challenge.
type blockDetector struct {
	markers      [][]byte
	minHTMLBytes int
}

func newBlockDetector(extraMarkers []string, minHTMLBytes int) *blockDetector {
	all := append([]string(nil), blockMarkers...)
	all = append(all, extraMarkers...)
	lowered := make([][]byte, 0, len(all))
	for _, m := range all {
		m = strings.TrimSpace(strings.ToLower(m))
		if m != "" {
			lowered = append(lowered, []byte(m))
		}
	}
	return &blockDetector{markers: lowered, minHTMLBytes: minHTMLBytes}
}

// LooksBlocked reports whether the body reads like a challenge page rather
// than content. A successful status with a suspiciously tiny body also
// counts, since challenge interstitials are typically minimal shells.
func (d *blockDetector) LooksBlocked(statusCode int, body []byte) bool {
	if d == nil || len(body) == 0 {
		return false
	}
	lower := bytes.ToLower(body)
	for _, marker := range d.markers {
		if bytes.Contains(lower, marker) {
			return true
		}
	}
	return statusCode == 200 && d.minHTMLBytes > 0 && len(body) < d.minHTMLBytes
}
