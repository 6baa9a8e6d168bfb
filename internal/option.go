package internal

import (
	"io"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/aiclient"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	logOut  io.Writer
	ai      aiclient.Completer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithLogOutput redirects the JSON log stream. The MCP server uses it to keep
// stdout free for the protocol.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

// WithCompleter replaces the reasoning-service client built from config.
func WithCompleter(c aiclient.Completer) Option {
	return func(a *application) {
		a.ai = c
	}
}
