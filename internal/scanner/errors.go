package scanner

import (
	"errors"

	"github.com/gadsdencode/roboscan/internal/webclient"
)

// ErrInvalidURL marks input rejected before any network call. Distinct
// from connectivity failures so callers can answer 400 instead of 502.
var ErrInvalidURL = errors.New("scanner: invalid url")

// ScanError is a fatal connectivity failure on the primary request. No
// partial scan is produced alongside it; the message is the single
// classified human-readable string surfaced to the caller.
type ScanError struct {
	Kind webclient.ErrorKind
	Host string
	Err  error
}

func (e *ScanError) Error() string {
	return webclient.KindMessage(e.Kind, e.Host)
}

func (e *ScanError) Unwrap() error { return e.Err }
