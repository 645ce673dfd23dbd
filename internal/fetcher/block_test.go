package fetcher

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func respWithHeaders(status int, kv ...string) *http.Response {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return &http.Response{StatusCode: status, Header: h}
}

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name    string
		resp    *http.Response
		body    string
		blocked bool
		kind    BlockKind
	}{
		{
			name:    "nil response",
			resp:    nil,
			body:    "",
			blocked: false,
			kind:    BlockNone,
		},
		{
			name:    "forbidden with cf-ray header",
			resp:    respWithHeaders(http.StatusForbidden, "cf-ray", "8f2a1b-KUL"),
			body:    "Access denied",
			blocked: true,
			kind:    BlockCloudflare,
		},
		{
			name:    "unavailable behind cloudflare server",
			resp:    respWithHeaders(http.StatusServiceUnavailable, "Server", "cloudflare"),
			body:    "",
			blocked: true,
			kind:    BlockCloudflare,
		},
		{
			name:    "plain forbidden is not a block wall",
			resp:    respWithHeaders(http.StatusForbidden),
			body:    "<html><body>Forbidden</body></html>",
			blocked: false,
			kind:    BlockNone,
		},
		{
			name:    "browser check interstitial",
			resp:    respWithHeaders(http.StatusOK),
			body:    "<html><body>Checking your browser before accessing example.my</body></html>",
			blocked: true,
			kind:    BlockCloudflare,
		},
		{
			name:    "cloudflare challenge page",
			resp:    respWithHeaders(http.StatusOK),
			body:    "<html><body>Cloudflare is reviewing this challenge</body></html>",
			blocked: true,
			kind:    BlockCloudflare,
		},
		{
			name:    "recaptcha widget",
			resp:    respWithHeaders(http.StatusOK),
			body:    `<html><body><div class="g-recaptcha" data-sitekey="x"></div></body></html>`,
			blocked: true,
			kind:    BlockCaptcha,
		},
		{
			name:    "tiny noscript shell",
			resp:    respWithHeaders(http.StatusOK),
			body:    `<html><body><noscript>Please enable JavaScript</noscript></body></html>`,
			blocked: true,
			kind:    BlockJSShell,
		},
		{
			name:    "tiny meta refresh shell",
			resp:    respWithHeaders(http.StatusOK),
			body:    `<html><head><meta http-equiv="refresh" content="0;url=/app"></head></html>`,
			blocked: true,
			kind:    BlockJSShell,
		},
		{
			name:    "ordinary contact page",
			resp:    respWithHeaders(http.StatusOK),
			body:    "<html><body><h1>Hubungi Kami</h1><p>Tel: 03-1234 5678</p></body></html>",
			blocked: false,
			kind:    BlockNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, kind := DetectBlock(tt.resp, []byte(tt.body))
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
