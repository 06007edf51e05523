package webclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorKind classifies terminal transport failures. The scan orchestrator
// surfaces the kind to its caller, which pattern-matches it downstream to
// render tailored guidance.
type ErrorKind string

const (
	ErrorDNS     ErrorKind = "dns"
	ErrorTLS     ErrorKind = "tls"
	ErrorRefused ErrorKind = "connection_refused"
	ErrorTimeout ErrorKind = "timeout"
	ErrorNetwork ErrorKind = "network"
)

// Classify maps a transport error onto an ErrorKind. Order matters: DNS and
// TLS failures often wrap timeouts, so they are checked first.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorNetwork
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorDNS
	}

	var certErr *tls.CertificateVerificationError
	var hostErr x509.HostnameError
	var authErr x509.UnknownAuthorityError
	var recErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &authErr) || errors.As(err, &recErr) {
		return ErrorTLS
	}
	// tls alert errors surface as plain strings through net/http.
	if strings.Contains(err.Error(), "tls:") || strings.Contains(err.Error(), "x509:") {
		return ErrorTLS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorRefused
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout
	}

	return ErrorNetwork
}

// KindMessage renders the single classified human-readable message for a
// fatal connectivity failure against host.
func KindMessage(kind ErrorKind, host string) string {
	switch kind {
	case ErrorDNS:
		return fmt.Sprintf("DNS resolution failed for %s — the domain may not exist or its nameservers are unreachable", host)
	case ErrorTLS:
		return fmt.Sprintf("SSL/TLS certificate error connecting to %s — the certificate may be expired, self-signed or issued for a different host", host)
	case ErrorRefused:
		return fmt.Sprintf("Connection refused by %s — no service is listening on the target port", host)
	case ErrorTimeout:
		return fmt.Sprintf("Connection to %s timed out — the host did not respond in time", host)
	}
	return fmt.Sprintf("Network error reaching %s", host)
}
