// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Setup sets the output, level and format of the standard logger. An unknown
// level is reported and leaves the logger at info.
func Setup(out io.Writer, level string, json bool) error {
	log.SetOutput(out)

	if json {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		return errors.Wrapf(err, "log level %q", level)
	}
	log.SetLevel(parsed)
	return nil
}
