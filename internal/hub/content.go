package hub

import (
	"errors"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
	"github.com/opencraftmc/chatrelay/internal/validator"
)

// validateContent adapts validator.Validate's generic error return to the
// concrete ClientError the hub needs to put on the wire.
func validateContent(content string, maxLength int) *clienterror.Error {
	err := validator.Validate(content, maxLength)
	if err == nil {
		return nil
	}
	var ce clienterror.Error
	if errors.As(err, &ce) {
		return &ce
	}
	internal := clienterror.New(clienterror.Internal)
	return &internal
}
