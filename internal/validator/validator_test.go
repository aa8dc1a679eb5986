package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
)

func TestValidateEmpty(t *testing.T) {
	err := Validate("", 100)
	require.Error(t, err)
	ce, ok := err.(clienterror.Error)
	require.True(t, ok)
	assert.Equal(t, clienterror.EmptyMessage, ce.Kind)
}

func TestValidateTooLongCountsCodepointsNotBytes(t *testing.T) {
	// Each "é" is two bytes but one code point; five of them must fit a
	// max_length of 5.
	err := Validate("ééééé", 5)
	assert.NoError(t, err)

	err = Validate("éééééé", 5)
	require.Error(t, err)
	ce := err.(clienterror.Error)
	assert.Equal(t, clienterror.MessageTooLong, ce.Kind)
}

func TestValidateAllowsSpacesAndAlphanumeric(t *testing.T) {
	assert.NoError(t, Validate("hello world 123", 100))
	assert.NoError(t, Validate("héllo wörld", 100))
}

func TestValidateRejectsControlCharacter(t *testing.T) {
	err := Validate("hi\tthere", 100)
	require.Error(t, err)
	ce := err.(clienterror.Error)
	assert.Equal(t, clienterror.InvalidCharacter, ce.Kind)
	assert.Equal(t, '\t', ce.Char)
}

func TestValidateIsPureAndDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.NoError(t, Validate("repeatable message", 100))
	}
}
