package passhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Supported algorithms for newly created digests.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

var (
	ErrEmptyHash     = errors.New("empty hash")
	ErrInvalidFormat = errors.New("invalid hash format")
	ErrIncompatible  = errors.New("incompatible hash version")
	ErrUnknownAlgo   = errors.New("unknown hash algorithm")
)

// Params controls the cost of newly created digests. Verification always
// uses the parameters embedded in the digest itself.
type Params struct {
	Algorithm   string
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	BcryptCost  int
}

// DefaultParams are tuned for interactive logins.
var DefaultParams = Params{
	Algorithm:   AlgorithmArgon2id,
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
	BcryptCost:  12,
}

// MaxMemory is the largest argon2id memory cost, in KiB, accepted from a
// stored digest.
const MaxMemory = 4 * 64 * 1024

// HashPassword returns a PHC formatted Argon2id hash string for the provided password.
func HashPassword(password string) (string, error) {
	return DefaultParams.Hash(password)
}

// Hash produces a self-describing digest with a fresh random salt.
func (p Params) Hash(password string) (string, error) {
	switch p.Algorithm {
	case "", AlgorithmArgon2id:
		return p.hashArgon2id(password)
	case AlgorithmBcrypt:
		return hashBcrypt(password, p.BcryptCost)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgo, p.Algorithm)
	}
}

func (p Params) hashArgon2id(password string) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version, p.Memory, p.Iterations, p.Parallelism, b64Salt, b64Hash)
	return encoded, nil
}

// VerifyPassword compares a plaintext password with an Argon2id or bcrypt digest.
// A mismatch is reported as (false, nil); an error means the digest itself is unusable.
func VerifyPassword(encoded, password string) (bool, error) {
	if encoded == "" {
		return false, ErrEmptyHash
	}
	if isBcrypt(encoded) {
		return verifyBcrypt(encoded, password)
	}
	return verifyArgon2id(encoded, password)
}

func verifyArgon2id(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != AlgorithmArgon2id {
		return false, ErrInvalidFormat
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if version != argon2.Version {
		return false, ErrIncompatible
	}
	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if t == 0 || p == 0 || m > MaxMemory {
		return false, ErrInvalidFormat
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(decodedHash) == 0 {
		return false, ErrInvalidFormat
	}
	calc := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(decodedHash)))
	return subtle.ConstantTimeCompare(calc, decodedHash) == 1, nil
}
