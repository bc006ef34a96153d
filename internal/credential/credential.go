// Package credential loads the Discord bot token from a local secrets file.
// The token is an opaque string, read once at startup and never written back.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingCredential indicates the token file is absent, unreadable, or
// empty. This is a startup-fatal condition; there are no retries.
var ErrMissingCredential = errors.New("missing credential")

// Load reads the bot token from the file at path and trims surrounding
// whitespace, including the trailing newline most editors add.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrMissingCredential, path, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingCredential, path)
	}
	return token, nil
}
