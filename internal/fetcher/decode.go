package fetcher

import (
	"mime"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// metaCharsetRe matches both <meta charset="..."> and the charset parameter
// inside an http-equiv Content-Type meta tag.
var metaCharsetRe = regexp.MustCompile(`(?i)charset\s*=\s*["']?([A-Za-z0-9][A-Za-z0-9_.:-]*)`)

// DecodeHTML converts body to UTF-8 using the charset declared in the
// Content-Type header or, failing that, in a meta tag near the top of the
// document. On any failure it returns the raw body as a string alongside the
// error so callers can still try to parse it.
func DecodeHTML(body []byte, contentType string) (string, error) {
	name := charsetFromHeader(contentType)
	if name == "" {
		name = charsetFromMeta(body)
	}

	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return string(body), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(body), eris.Wrapf(err, "fetcher: unsupported charset %q", name)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body), eris.Wrapf(err, "fetcher: decode %s body", name)
	}
	return string(decoded), nil
}

func charsetFromHeader(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func charsetFromMeta(body []byte) string {
	head := body
	if len(head) > 1024 {
		head = head[:1024]
	}
	m := metaCharsetRe.FindSubmatch(head)
	if m == nil {
		return ""
	}
	return string(m[1])
}
