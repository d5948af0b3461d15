package util

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// QueryAny returns the first non-empty query parameter among names.
// Used where clients send either camelCase or snake_case keys.
func QueryAny(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}

// FirstNonEmpty returns the first argument that is not blank after trimming
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
