// Package idgen generates short, URL-safe request identifiers backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RequestPrefix is prepended to every request ID.
const RequestPrefix = "req-"

// ViewerPrefix is prepended to the IDs of event stream viewers.
const ViewerPrefix = "v-"

// alphabet excludes punctuation so IDs are safe in headers, file names and
// NATS subjects.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
const Length = 12

// RequestID returns a new ID for the X-Request-ID header.
func RequestID() (string, error) {
	return WithPrefix(RequestPrefix)
}

// ViewerID returns a new ID for an event stream connection.
func ViewerID() (string, error) {
	return WithPrefix(ViewerPrefix)
}

// WithPrefix returns a new ID with the given prefix.
func WithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
