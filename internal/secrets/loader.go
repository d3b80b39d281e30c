// Package secrets resolves sensitive values, such as API keys, from
// configuration or the filesystem.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret comes from. When both are set, File
// takes precedence over Value.
type Source struct {
	// Name is used in error messages to give context about the secret.
	Name string
	// Value is an inline secret provided via configuration.
	Value string
	// File points to a file containing the secret.
	File string
}

// Load resolves the secret and trims surrounding whitespace. An empty
// result is an error.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
