// Package clienterror defines the closed set of protocol-level errors the
// hub may surface to a connected client, and their wire representation.
package clienterror

import (
	"encoding/json"
	"fmt"
)

// Kind is one member of the closed ClientError enumeration.
type Kind string

const (
	NotSupported              Kind = "NotSupported"
	LoginFailed               Kind = "LoginFailed"
	NotLoggedIn               Kind = "NotLoggedIn"
	AlreadyLoggedIn           Kind = "AlreadyLoggedIn"
	MojangRequestMissing      Kind = "MojangRequestMissing"
	NotPermitted              Kind = "NotPermitted"
	NotBanned                 Kind = "NotBanned"
	Banned                    Kind = "Banned"
	RateLimited               Kind = "RateLimited"
	PrivateMessageNotAccepted Kind = "PrivateMessageNotAccepted"
	EmptyMessage              Kind = "EmptyMessage"
	MessageTooLong            Kind = "MessageTooLong"
	InvalidCharacter          Kind = "InvalidCharacter"
	InvalidId                 Kind = "InvalidId"
	Internal                  Kind = "Internal"
)

// Error is a ClientError value. Char only carries meaning when Kind is
// InvalidCharacter; every other variant is a bare tag.
type Error struct {
	Kind Kind
	Char rune
}

// New builds a unit-variant ClientError. Do not use it for InvalidCharacter.
func New(kind Kind) Error {
	return Error{Kind: kind}
}

// NewInvalidCharacter builds the one ClientError variant that carries a payload.
func NewInvalidCharacter(ch rune) Error {
	return Error{Kind: InvalidCharacter, Char: ch}
}

func (e Error) Error() string {
	if e.Kind == InvalidCharacter {
		return fmt.Sprintf("invalid character %q", e.Char)
	}
	return string(e.Kind)
}

// MarshalJSON renders unit variants as a bare string and InvalidCharacter
// as {"InvalidCharacter": "<char>"}, matching the externally-tagged shape
// serde gives Rust enums with a mix of unit and newtype variants.
func (e Error) MarshalJSON() ([]byte, error) {
	if e.Kind == InvalidCharacter {
		return json.Marshal(map[string]string{string(InvalidCharacter): string(e.Char)})
	}
	return json.Marshal(string(e.Kind))
}

func (e *Error) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Kind = Kind(s)
		e.Char = 0
		return nil
	}
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("clienterror: cannot decode %s", data)
	}
	ch, ok := obj[string(InvalidCharacter)]
	if !ok || len([]rune(ch)) != 1 {
		return fmt.Errorf("clienterror: malformed InvalidCharacter payload %s", data)
	}
	e.Kind = InvalidCharacter
	e.Char = []rune(ch)[0]
	return nil
}
