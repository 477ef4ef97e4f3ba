package hashcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCorruptionEmptyIsNotCorruption(t *testing.T) {
	rep := DetectCorruption("")
	assert.False(t, rep.Corrupted)
	assert.Equal(t, SeverityNone, rep.Severity)
	assert.Empty(t, rep.Types)
}

func TestDetectCorruptionUnrecognizedPrefix(t *testing.T) {
	// Any non-empty string with an unknown algorithm tag is corrupted.
	for _, hash := range []string{"plaintext-password", "$argon2id$v=19$whatever", "md5:abcdef", "x"} {
		rep := DetectCorruption(hash)
		assert.True(t, rep.Corrupted, "hash %q", hash)
		assert.True(t, rep.Has(CorruptionAlgorithmTag), "hash %q", hash)
		assert.Equal(t, SeverityHigh, rep.Severity, "hash %q", hash)
	}
}

func TestDetectCorruptionSeverityLadder(t *testing.T) {
	wellFormed := "$2y$10$" + strings.Repeat("A", 53)
	require.Len(t, wellFormed, EncodedLength)

	tests := []struct {
		name      string
		hash      string
		wantTypes []string
		wantSev   Severity
	}{
		{
			name:      "whitespace only is low and recoverable",
			hash:      "  " + wellFormed + "\t",
			wantTypes: []string{CorruptionWhitespace},
			wantSev:   SeverityLow,
		},
		{
			name:      "truncation alone is medium",
			hash:      wellFormed[:59],
			wantTypes: []string{CorruptionTruncated},
			wantSev:   SeverityMedium,
		},
		{
			name:      "overlong alone is medium",
			hash:      wellFormed + "A",
			wantTypes: []string{CorruptionOverlong},
			wantSev:   SeverityMedium,
		},
		{
			name:      "bad characters are high",
			hash:      "$2y$10$" + strings.Repeat("A", 50) + "\x00ab",
			wantTypes: []string{CorruptionCharacterSet},
			wantSev:   SeverityHigh,
		},
		{
			name:      "wrong tag dominates truncation",
			hash:      "$9z$10$" + strings.Repeat("A", 40),
			wantTypes: []string{CorruptionTruncated, CorruptionAlgorithmTag},
			wantSev:   SeverityHigh,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep := DetectCorruption(tc.hash)
			assert.True(t, rep.Corrupted)
			assert.Equal(t, tc.wantTypes, rep.Types)
			assert.Equal(t, tc.wantSev, rep.Severity)
		})
	}
}

func TestWhitespaceOnlyHelper(t *testing.T) {
	wellFormed := "$2y$10$" + strings.Repeat("A", 53)

	assert.True(t, DetectCorruption(" "+wellFormed).WhitespaceOnly())
	assert.False(t, DetectCorruption(" "+wellFormed[:50]).WhitespaceOnly())
	assert.False(t, DetectCorruption(wellFormed).WhitespaceOnly())
}

func TestDetectCorruptionReferenceScenario(t *testing.T) {
	// 59 characters after trimming: validator flags length, detector flags
	// truncation.
	hash := "$2y$10$" + strings.Repeat("A", 52)
	require.Len(t, hash, 59)

	val := Validate(hash)
	assert.False(t, val.Valid)
	assert.Equal(t, []string{"invalid length: 59 (expected 60)"}, val.Issues)

	rep := DetectCorruption(hash)
	assert.True(t, rep.Corrupted)
	assert.True(t, rep.Has(CorruptionTruncated))
}
