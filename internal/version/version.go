// Package version extracts the semantic version from a project manifest.
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrNoVersion indicates the manifest contains no usable version declaration.
var ErrNoVersion = errors.New("no version declaration in manifest")

const declarationKey = "version"

// Resolve extracts the semantic version tag from manifest text. It locates
// the first line declaring `version = "<value>"`, strips everything but
// digits and dots from the value, validates the result as a semantic version,
// and returns it with a leading "v". Pure function of the manifest text:
// the same content always yields the same tag.
func Resolve(manifest string) (string, error) {
	for _, line := range strings.Split(manifest, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, declarationKey) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, declarationKey))
		if !strings.HasPrefix(rest, "=") {
			continue
		}

		value := stripToVersion(rest)
		if value == "" {
			return "", fmt.Errorf("version declaration has no value: %w", ErrNoVersion)
		}
		if _, err := semver.StrictNewVersion(value); err != nil {
			return "", fmt.Errorf("version %q is not a semantic version: %w", value, err)
		}
		return "v" + value, nil
	}
	return "", ErrNoVersion
}

// stripToVersion drops every character except digits and the dot separator.
// This discards the assignment syntax, quotes, and any pre-release or build
// decoration around the core version.
func stripToVersion(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
