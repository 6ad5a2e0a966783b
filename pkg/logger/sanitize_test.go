package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	assert.Equal(t, "j***@*******.com", SanitizedEmail("jane@example.com"))
	assert.Equal(t, "[invalid-email]", SanitizedEmail("not-an-email"))
}

func TestSanitizePath_RedactsVerifySecret(t *testing.T) {
	got := SanitizePath("/user/verify/8b9cdd43/b17f63a1-secret-8b9cdd43")
	assert.Equal(t, "/user/verify/8b9cdd43/[REDACTED]", got)
}

func TestSanitizePath_LeavesOtherPathsAlone(t *testing.T) {
	paths := []string{
		"/user/signup",
		"/user/verified",
		"/user/verify/only-account-id",
		"/health",
	}
	for _, p := range paths {
		assert.Equal(t, p, SanitizePath(p))
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("resetString=abc123"))
	assert.True(t, SanitizeQueryString("password=hunter2"))
	assert.False(t, SanitizeQueryString("error=true"))
}
