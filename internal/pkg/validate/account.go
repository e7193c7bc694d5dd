// Package validate classifies login identifiers.
package validate

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^(?:\+84|0|\+1)?([1-9][0-9]{8,9})$`)
	emailPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,8}$`)
)

type AccountKind int

const (
	AccountInvalid AccountKind = iota
	AccountPhone
	AccountEmail
)

func IsPhone(s string) bool { return phonePattern.MatchString(strings.TrimSpace(s)) }
func IsEmail(s string) bool { return emailPattern.MatchString(strings.TrimSpace(s)) }

// Account reports whether account is a phone number or an email address.
func Account(account string) AccountKind {
	switch {
	case IsPhone(account):
		return AccountPhone
	case IsEmail(account):
		return AccountEmail
	default:
		return AccountInvalid
	}
}
