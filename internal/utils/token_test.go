package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6, "leading zeros must be preserved")
		for _, r := range otp {
			require.True(t, r >= '0' && r <= '9', "OTP must be numeric, got %q", otp)
		}
	}
}

func TestGenerateResetToken(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := GenerateResetToken()
		require.NoError(t, err)
		require.Len(t, token, 32)
		for _, r := range token {
			require.True(t, strings.ContainsRune(resetTokenAlphabet, r), "unexpected character %q", r)
		}
		require.False(t, seen[token], "tokens must not repeat")
		seen[token] = true
	}
}
