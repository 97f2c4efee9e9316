package application

import "regexp"

// emailPattern is a permissive local@domain.tld shape, not RFC 5322.
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// LooksLikeEmail reports whether s is shaped like an email address.
func LooksLikeEmail(s string) bool {
	return emailPattern.MatchString(s)
}
