package infrastructure

import (
	"os"
	"path/filepath"

	"weatherbot.app/pkg/errors"
)

// OpenLogFile opens LOG_FILE_PATH for appending, creating missing parent directories.
// The caller owns the file and closes it on shutdown.
func OpenLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.NewConfigurationError("LOG_FILE_PATH cannot be empty", nil)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewConfigurationError("cannot create log directory", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.NewConfigurationError("cannot open log file", err)
	}
	return file, nil
}
