package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ToString renders any value using fmt defaults.
func ToString(v any) string {
	return fmt.Sprintf("%v", v)
}

// ToNumberWithDefault parses s as int, returning def when parsing fails.
func ToNumberWithDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// IsValidEmail performs a shallow syntactic check.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return emailPattern.MatchString(email)
}
