package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	return NewHasher([]byte("test-pepper"), DefaultParams)
}

func TestHasher_Hash(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.True(t, h.Verify(tt.password, hash))
		})
	}
}

func TestHasher_UniqueSalts(t *testing.T) {
	h := newTestHasher(t)

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.True(t, h.Verify("samepassword", hash1))
	require.True(t, h.Verify("samepassword", hash2))
}

func TestHasher_WrongPassword(t *testing.T) {
	h := newTestHasher(t)
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		"correct-passwor",
		strings.Repeat("x", 10000),
	} {
		require.False(t, h.Verify(wrong, hash), "password %q should not verify", wrong)
	}
}

func TestHasher_PepperIsApplied(t *testing.T) {
	a := NewHasher([]byte("pepper-a"), DefaultParams)
	b := NewHasher([]byte("pepper-b"), DefaultParams)

	hash, err := a.Hash("s3cret")
	require.NoError(t, err)

	require.True(t, a.Verify("s3cret", hash))
	require.False(t, b.Verify("s3cret", hash), "a different pepper must not verify")
}

func TestHasher_MalformedHashNeverMatches(t *testing.T) {
	h := newTestHasher(t)

	for _, tt := range []struct {
		name string
		hash string
	}{
		{"empty hash", ""},
		{"plain text", "password"},
		{"wrong algorithm", "$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"zero parameters", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing version", "$argon2id$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"truncated bcrypt", "$2b$10$short"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, h.Verify("password", tt.hash))
			})
		})
	}
}

func TestHasher_RejectsExcessiveCost(t *testing.T) {
	h := newTestHasher(t)
	hashA := strings.Repeat("A", 43)

	for _, tt := range []struct {
		name string
		hash string
	}{
		{"huge memory", "$argon2id$v=19$m=4294967295,t=1,p=255$c2FsdHNhbHRzYWx0c2FsdA$" + hashA},
		{"memory above cap", "$argon2id$v=19$m=262145,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$" + hashA},
		{"too many iterations", "$argon2id$v=19$m=19456,t=50,p=1$c2FsdHNhbHRzYWx0c2FsdA$" + hashA},
		{"too much parallelism", "$argon2id$v=19$m=19456,t=2,p=64$c2FsdHNhbHRzYWx0c2FsdA$" + hashA},
		{"oversized key", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$" + strings.Repeat("A", 400)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, h.Verify("x", tt.hash))
			require.True(t, h.NeedsRehash(tt.hash))
		})
	}
}

func TestHasher_LegacyBcrypt(t *testing.T) {
	h := newTestHasher(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-password"), bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, h.Verify("legacy-password", string(legacy)))
	require.False(t, h.Verify("other-password", string(legacy)))
	require.True(t, h.NeedsRehash(string(legacy)))
}

func TestHasher_NeedsRehash(t *testing.T) {
	h := newTestHasher(t)

	current, err := h.Hash("password")
	require.NoError(t, err)
	require.False(t, h.NeedsRehash(current))

	weak := NewHasher([]byte("test-pepper"), Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		KeyLength:   32,
		SaltLength:  16,
	})
	old, err := weak.Hash("password")
	require.NoError(t, err)
	require.True(t, h.NeedsRehash(old))
	require.True(t, h.Verify("password", old), "older parameters still verify")

	require.True(t, h.NeedsRehash("garbage"))
}

func TestHasher_VerifyDummy(t *testing.T) {
	h := newTestHasher(t)
	require.NotPanics(t, func() {
		h.VerifyDummy("whatever")
		h.VerifyDummy("whatever-again")
	})
	require.NotEmpty(t, h.dummy)
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]struct{}, 50)
	for range 50 {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, 16)
		require.NotContains(t, seen, password, "duplicate password generated")
		seen[password] = struct{}{}

		for _, char := range password {
			valid := (char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9')
			require.True(t, valid, "password should only contain alphanumeric characters")
		}
	}
}

func TestLoadOrGeneratePepper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "pepper")

	first, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Len(t, first, 43)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "pepper must be stable across loads")

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
	_, err = LoadOrGeneratePepper(path)
	require.Error(t, err)

	_, err = LoadOrGeneratePepper("")
	require.Error(t, err)
}
