package fetcher

import (
	"net/http"
	"strings"
)

// BlockKind classifies why a host refused to serve real content.
type BlockKind string

const (
	BlockNone       BlockKind = ""
	BlockCloudflare BlockKind = "cloudflare"
	BlockCaptcha    BlockKind = "captcha"
	BlockJSShell    BlockKind = "js_shell"
)

// bodyMarkers identify interstitial pages by their tell-tale strings,
// matched against the lowercased body.
var bodyMarkers = []struct {
	marker string
	kind   BlockKind
}{
	{"checking your browser", BlockCloudflare},
	{"cf-browser-verification", BlockCloudflare},
	{"attention required! | cloudflare", BlockCloudflare},
	{"captcha", BlockCaptcha},
}

// DetectBlock reports whether the response is an anti-bot wall rather than
// real content, and which kind.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockKind) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" ||
			strings.Contains(strings.ToLower(resp.Header.Get("server")), "cloudflare") {
			return true, BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))
	for _, m := range bodyMarkers {
		if strings.Contains(lower, m.marker) {
			return true, m.kind
		}
	}
	if strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return true, BlockCloudflare
	}

	// A tiny page that immediately bounces to JavaScript is a shell, not content.
	if len(body) < 2048 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
