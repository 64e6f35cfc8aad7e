package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePostalCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sw1a1aa", "SW1A 1AA"},
		{"SW1A 1AA", "SW1A 1AA"},
		{" ec1a-1bb ", "EC1A 1BB"},
		{"m1 1ae", "M1 1AE"},
		{"cr2 6xh", "CR2 6XH"},
		{"dn551pt", "DN55 1PT"},
		{"", ""},
		{"ab", "AB"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizePostalCode(tc.input))
		})
	}
}

func TestNormalizePostalCodeIsIdempotent(t *testing.T) {
	once := NormalizePostalCode("sw1a1aa")
	twice := NormalizePostalCode(once)
	assert.Equal(t, once, twice)
}

func TestIsValidPostalCode(t *testing.T) {
	assert.True(t, IsValidPostalCode("SW1A 1AA"))
	assert.True(t, IsValidPostalCode("M1 1AE"))
	assert.True(t, IsValidPostalCode("DN55 1PT"))
	assert.True(t, IsValidPostalCode("sw1a1aa")) // validated after normalization

	assert.False(t, IsValidPostalCode("not a code"))
	assert.False(t, IsValidPostalCode("12345"))
	assert.False(t, IsValidPostalCode(""))
}

func TestLooksLikePostalCode(t *testing.T) {
	assert.True(t, LooksLikePostalCode("SW1A"))
	assert.True(t, LooksLikePostalCode("sw1a 1aa"))
	assert.True(t, LooksLikePostalCode("M1"))

	assert.False(t, LooksLikePostalCode("221B Baker Street, London"))
	assert.False(t, LooksLikePostalCode("High Street"))
}
