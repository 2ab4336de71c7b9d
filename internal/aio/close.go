package aio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Close closes c and logs a failure instead of returning it. Use it in defer statements
// where the close error can't change the outcome anymore.
func Close(c io.Closer) {
	if c == nil {
		return
	}

	if err := c.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close resource")
	}
}

// CloseWith closes c and stores a failure in err, usually a named return value. An error
// already held by err wins and the close failure is only logged.
func CloseWith(err *error, c io.Closer) {
	if c == nil {
		return
	}

	cErr := c.Close()
	if cErr == nil {
		return
	}
	if *err != nil {
		log.Warn().Err(cErr).Msg("failed to close resource")

		return
	}

	*err = errors.Wrap(cErr, "failed to close resource")
}
