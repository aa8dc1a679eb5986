// Package validator enforces the content rules applied to every outgoing
// chat message before the hub fans it out.
package validator

import (
	"unicode"
	"unicode/utf8"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
)

// Validate returns nil if content may be broadcast, or a clienterror.Error
// describing the first rule it violates. Length is counted in code points.
func Validate(content string, maxLength int) error {
	if content == "" {
		return clienterror.New(clienterror.EmptyMessage)
	}
	if utf8.RuneCountInString(content) > maxLength {
		return clienterror.New(clienterror.MessageTooLong)
	}
	for _, r := range content {
		if isAllowed(r) {
			continue
		}
		return clienterror.NewInvalidCharacter(r)
	}
	return nil
}

func isAllowed(r rune) bool {
	if r == ' ' {
		return true
	}
	if isASCIIGraphic(r) {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIIGraphic(r rune) bool {
	return r > 0x20 && r < 0x7F
}
