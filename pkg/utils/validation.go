package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// single lowercase label, RFC 1123
var hostnamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidateHostname checks that hostname is a single valid lowercase label
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("hostname is empty")
	}

	if len(hostname) > 63 {
		return fmt.Errorf("hostname too long: %d characters (max 63)", len(hostname))
	}

	if !hostnamePattern.MatchString(hostname) {
		return fmt.Errorf("invalid hostname format: %s", hostname)
	}

	return nil
}

// NormalizeHostname trims and lowercases an operator supplied hostname
func NormalizeHostname(hostname string) string {
	return strings.ToLower(strings.TrimSpace(hostname))
}

// ValidateDatabaseConfig checks that every database connection field is set
func ValidateDatabaseConfig(host, port, user, database string) error {
	if host == "" {
		return fmt.Errorf("database host is empty")
	}

	if port == "" {
		return fmt.Errorf("database port is empty")
	}

	if user == "" {
		return fmt.Errorf("database user is empty")
	}

	if database == "" {
		return fmt.Errorf("database name is empty")
	}

	return nil
}
