package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReferenceFormat(t *testing.T) {
	ref := GenerateReference("KYC")

	assert.True(t, strings.HasPrefix(ref, "KYC"))
	// prefix + 13-digit millisecond timestamp + 4-char suffix
	assert.Len(t, ref, 3+13+4)
}

func TestGenerateReferenceVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[GenerateReference("RID")] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct1horse"))
	assert.Error(t, ValidatePassword("short1"))
	assert.Error(t, ValidatePassword("lettersonly"))
	assert.Error(t, ValidatePassword("1234567890"))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct1horse")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct1horse", hash))
	assert.False(t, CheckPasswordHash("wrong1horse", hash))
}
