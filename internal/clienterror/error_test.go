package clienterror

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnitVariantIsBareString(t *testing.T) {
	data, err := json.Marshal(New(RateLimited))
	require.NoError(t, err)
	assert.Equal(t, `"RateLimited"`, string(data))
}

func TestMarshalInvalidCharacterIsTaggedObject(t *testing.T) {
	data, err := json.Marshal(NewInvalidCharacter('x'))
	require.NoError(t, err)
	assert.Equal(t, `{"InvalidCharacter":"x"}`, string(data))
}

func TestUnmarshalRoundTrip(t *testing.T) {
	for _, want := range []Error{
		New(NotSupported),
		New(Banned),
		NewInvalidCharacter('€'),
	} {
		data, err := json.Marshal(want)
		require.NoError(t, err)

		var got Error
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, want, got)
	}
}
