package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Params are the Argon2id cost parameters encoded into every hash.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultParams follow the OWASP minimum for Argon2id.
var DefaultParams = Params{
	Memory:      memory,
	Iterations:  iterations,
	Parallelism: parallelism,
	KeyLength:   keyLength,
	SaltLength:  saltLength,
}

// Upper bounds on the cost of a stored hash. Hashes above them never verify,
// so a corrupt or hostile row cannot exhaust memory or stall a login.
const (
	maxMemory      = 256 * 1024 // KiB (256 MiB)
	maxIterations  = 10
	maxParallelism = 16
	maxKeyLength   = 128
)

// Hasher hashes and verifies passwords with Argon2id keyed by a server-side
// pepper. Legacy bcrypt hashes still verify so older accounts can log in and
// be upgraded.
type Hasher struct {
	pepper []byte
	params Params

	dummyOnce sync.Once
	dummy     string
}

// NewHasher returns a Hasher using pepper. A nil or empty pepper is allowed
// but means the hashes are only as strong as Argon2id alone.
func NewHasher(pepper []byte, params Params) *Hasher {
	return &Hasher{
		pepper: append([]byte(nil), pepper...),
		params: params,
	}
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: generate salt: %w", err)
	}

	hash := argon2.IDKey(
		h.peppered(password),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// Return PHC-style encoded string
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// Verify reports whether password matches encodedHash. Any malformed or
// unrecognised hash simply does not match.
func (h *Hasher) Verify(password, encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}

	p, salt, expected, ok := decodeArgon2id(encodedHash)
	if !ok {
		return false
	}

	computed := argon2.IDKey(
		h.peppered(password),
		salt,
		p.Iterations,
		p.Memory,
		p.Parallelism,
		uint32(len(expected)), // #nosec G115 - bounded by the decoded hash
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// VerifyDummy burns the same amount of work as a real Verify against a
// throwaway hash. Call it when there is no stored hash to compare so the
// response time does not reveal whether an account exists.
func (h *Hasher) VerifyDummy(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = h.Hash(MustGenerateToken(TokenSize128))
	})
	_ = h.Verify(password, h.dummy)
}

// NeedsRehash reports whether encodedHash was produced by a different
// algorithm or with weaker parameters than the Hasher's current ones.
func (h *Hasher) NeedsRehash(encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return true
	}

	p, _, expected, ok := decodeArgon2id(encodedHash)
	if !ok {
		return true
	}

	return p.Memory != h.params.Memory ||
		p.Iterations != h.params.Iterations ||
		p.Parallelism != h.params.Parallelism ||
		uint32(len(expected)) != h.params.KeyLength // #nosec G115
}

func (h *Hasher) peppered(password string) []byte {
	b := make([]byte, 0, len(password)+len(h.pepper))
	b = append(b, password...)
	return append(b, h.pepper...)
}

func isBcrypt(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}

// decodeArgon2id parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func decodeArgon2id(encodedHash string) (Params, []byte, []byte, bool) {
	parts := strings.Split(encodedHash, "$")

	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, false
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return Params{}, nil, nil, false
	}
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return Params{}, nil, nil, false
	}
	if p.Memory > maxMemory || p.Iterations > maxIterations || p.Parallelism > maxParallelism {
		return Params{}, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > maxKeyLength {
		return Params{}, nil, nil, false
	}

	p.SaltLength = uint32(len(salt))    // #nosec G115
	p.KeyLength = uint32(len(expected)) // #nosec G115
	return p, salt, expected, true
}

// GeneratePassword returns a random 16 character alphanumeric password, used
// by the admin CLI when no password is supplied.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
