package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveSecret reads envName, preferring the file named by envName+"_FILE".
// Container platforms mount credentials as files, so the file wins.
func ResolveSecret(envName string) (string, error) {
	fileEnv := envName + "_FILE"
	if path := os.Getenv(fileEnv); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			// never echo the secret, only where it was expected
			return "", fmt.Errorf("failed to read secret from %s=%s: %w", fileEnv, path, err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return os.Getenv(envName), nil
}

// Env returns the value of name, or def when it is unset or empty.
func Env(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
