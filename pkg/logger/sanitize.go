package logger

import (
	"strings"
)

// SanitizedEmail masks an email address for logging (e.g., "u***@e***.com")
func SanitizedEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "[invalid-email]"
	}

	username := parts[0]
	domain := parts[1]

	// Mask username: keep first char, mask rest
	if len(username) > 1 {
		username = string(username[0]) + strings.Repeat("*", len(username)-1)
	}

	// Mask domain: keep TLD, mask the rest
	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return username + "@" + domain
}

// SanitizePath redacts token secrets carried in URL paths. Verification links
// look like /user/verify/{accountId}/{secret}; the secret segment must never
// reach the request log.
func SanitizePath(path string) string {
	const verifyPrefix = "/user/verify/"
	if !strings.HasPrefix(path, verifyPrefix) {
		return path
	}

	rest := strings.TrimPrefix(path, verifyPrefix)
	segments := strings.SplitN(rest, "/", 2)
	if len(segments) < 2 || segments[1] == "" {
		return path
	}

	return verifyPrefix + segments[0] + "/[REDACTED]"
}

// SanitizeQueryString reports whether a query string contains sensitive
// parameters and should be redacted wholesale.
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"resetstring",
		"email",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
