package impl

import (
	"strings"
	"testing"

	"shopauth/internal/hashcheck"
	"shopauth/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt generate: %v", err)
	}
	return string(h)
}

func TestVerifyRoundTrip(t *testing.T) {
	v := NewSecureVerifier()

	for _, password := range []string{"hunter22", "correct horse battery staple", "päßwörd"} {
		hash := mustHash(t, password)
		res := v.Verify(password, hash, nil)
		if !res.Success {
			t.Fatalf("fresh hash of %q did not verify: %+v", password, res)
		}
		if !res.HashValid || !res.RawMatch {
			t.Fatalf("expected valid hash and raw match, got %+v", res)
		}
		if res.Diagnostics != nil {
			t.Fatalf("successful verification must skip diagnosis")
		}
	}
}

func TestVerifyMismatch(t *testing.T) {
	v := NewSecureVerifier()
	hash := mustHash(t, "right-password")

	res := v.Verify("wrong-password", hash, nil)
	if res.Success {
		t.Fatalf("mismatched password verified")
	}
	if !res.HashValid {
		t.Fatalf("hash should be structurally valid")
	}
	if res.RawMatch {
		t.Fatalf("raw comparison should have failed")
	}
	if res.Diagnostics == nil || res.Diagnostics.FailureReason != service.FailurePasswordMismatch {
		t.Fatalf("expected password_mismatch diagnosis, got %+v", res.Diagnostics)
	}
}

func TestVerifyEmptyPasswordFailsFast(t *testing.T) {
	v := NewSecureVerifier()
	hash := mustHash(t, "whatever")

	res := v.Verify("", hash, nil)
	if res.Success || res.RawMatch {
		t.Fatalf("empty password must not verify: %+v", res)
	}
	if res.Diagnostics == nil || res.Diagnostics.FailureReason != service.FailureEmptyInput {
		t.Fatalf("expected empty_input, got %+v", res.Diagnostics)
	}
}

func TestVerifyEmptyHash(t *testing.T) {
	v := NewSecureVerifier()

	res := v.Verify("hunter22", "", nil)
	if res.Success || res.HashValid {
		t.Fatalf("empty hash must not verify: %+v", res)
	}
	if res.Diagnostics == nil {
		t.Fatalf("diagnostics must be populated for an empty hash")
	}
	if res.Diagnostics.FailureReason != service.FailureEmptyInput {
		t.Fatalf("expected empty_input for missing credential, got %q", res.Diagnostics.FailureReason)
	}
	if res.Diagnostics.HashAnalysis.Corruption.Corrupted {
		t.Fatalf("an absent hash is not corruption")
	}
}

func TestVerifyCorruptedHash(t *testing.T) {
	v := NewSecureVerifier()
	hash := mustHash(t, "hunter22")

	tests := []struct {
		name string
		hash string
		want service.FailureReason
	}{
		{name: "truncated", hash: hash[:59], want: service.FailureHashCorrupted},
		{name: "whitespace contaminated", hash: " " + hash + " ", want: service.FailureHashCorrupted},
		{name: "wrong algorithm tag", hash: "$1a$" + hash[4:], want: service.FailureHashCorrupted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := v.Verify("hunter22", tc.hash, nil)
			if res.Success {
				t.Fatalf("corrupted hash verified: %+v", res)
			}
			if res.HashValid {
				t.Fatalf("corrupted hash reported valid")
			}
			if res.Diagnostics == nil || res.Diagnostics.FailureReason != tc.want {
				t.Fatalf("expected %s, got %+v", tc.want, res.Diagnostics)
			}
			if !res.Diagnostics.HashAnalysis.Corruption.Corrupted {
				t.Fatalf("corruption report missing")
			}
		})
	}
}

func TestVerifyNeverMutatesInputs(t *testing.T) {
	v := NewSecureVerifier()
	hash := " " + mustHash(t, "hunter22")
	before := strings.Clone(hash)

	_ = v.Verify("hunter22", hash, nil)
	if hash != before {
		t.Fatalf("verify mutated the hash argument")
	}
}

func TestClassifyFailure(t *testing.T) {
	valid := hashcheck.ValidationResult{Valid: true}
	if got := classifyFailure("$2y$10$"+strings.Repeat("A", 53), valid); got != service.FailurePasswordMismatch {
		t.Fatalf("expected password_mismatch, got %s", got)
	}
	if got := classifyFailure("", hashcheck.Validate("")); got != service.FailureEmptyInput {
		t.Fatalf("expected empty_input, got %s", got)
	}
	if got := classifyFailure("garbage", hashcheck.Validate("garbage")); got != service.FailureHashCorrupted {
		t.Fatalf("expected hash_corrupted, got %s", got)
	}
}
