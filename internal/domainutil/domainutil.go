// Package domainutil canonicalizes URLs to registrable domains. The output
// is the cooldown/dedup key: two URLs pointing at the same site (different
// subdomains, paths or schemes) must normalize to the same string.
package domainutil

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// Errors returned by Normalize. Callers treat any of them as a validation
// failure, distinct from network errors.
var (
	ErrEmptyURL         = &url.Error{Op: "normalize", URL: "", Err: errStr("empty url")}
	ErrMissingHost      = &url.Error{Op: "normalize", URL: "", Err: errStr("missing host")}
	ErrUnsupportedProto = &url.Error{Op: "normalize", URL: "", Err: errStr("unsupported scheme")}
)

type errStr string

func (e errStr) Error() string { return string(e) }

// Normalize reduces raw to its registrable domain.
//
// The input is trimmed and given an https:// scheme when none is present.
// Non-http(s) schemes and unparseable input fail. The hostname is
// lowercased, IDN-mapped to punycode and stripped of a trailing dot. IP
// literals and localhost are returned verbatim; everything else is reduced
// with public-suffix-list rules (www.shop.example.co.uk -> example.co.uk),
// falling back to the raw hostname when the suffix list yields nothing.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrUnsupportedProto
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", ErrMissingHost
	}

	// IDN hostnames compare by their punycode form.
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	// No public-suffix reduction for addresses that cannot have one.
	if net.ParseIP(host) != nil || isLocalhost(host) {
		return host, nil
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil || registrable == "" {
		return host, nil
	}
	return registrable, nil
}

func isLocalhost(host string) bool {
	return host == "localhost" || strings.HasSuffix(host, ".localhost")
}
