package server

import (
	"github.com/gadsdencode/roboscan/internal/logging"
)

// Config for the HTTP API surface.
type Config struct {
	// ListenAddr is the bind address, e.g. ":8080".
	ListenAddr string

	// Logger is optional; a stdout logger is created when nil.
	Logger logging.Logger
}
