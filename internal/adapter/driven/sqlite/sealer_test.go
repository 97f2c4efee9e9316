package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s, err := newSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", sealed)

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", opened)
}

func TestSealer_NonceVaries(t *testing.T) {
	s, err := newSealer(testKey)
	require.NoError(t, err)

	a, err := s.Seal("same")
	require.NoError(t, err)
	b, err := s.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_Disabled(t *testing.T) {
	s, err := newSealer(nil)
	require.NoError(t, err)

	sealed, err := s.Seal("hunter2")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := s.Open("anything")
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestSealer_OpenErrors(t *testing.T) {
	s, err := newSealer(testKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{name: "not base64", input: "%%%"},
		{name: "too short", input: "AAAA"},
		{name: "tampered", input: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Open(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestNewSealer_KeyLength(t *testing.T) {
	_, err := newSealer(make([]byte, 16))
	assert.Error(t, err)
}
