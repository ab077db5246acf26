// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"usersvc/config"
	domainerrors "usersvc/internal/domain/errors"
	"usersvc/internal/domain/service"
	"usersvc/internal/errors"
)

const (
	argon2Algorithm = "argon2id"

	// Stored verifiers may carry stronger factors than the configured ones,
	// up to this multiple. Anything beyond is treated as corrupt.
	maxParamFactor = 4
	maxSaltLength  = 64
	maxKeyLength   = 64
	maxBcryptCost  = 14
)

// Argon2Params are the Argon2id work factors embedded in every verifier.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params returns OWASP-recommended defaults for Argon2id.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// argon2Hasher implements service.CredentialHasher with Argon2id in PHC string
// format. Legacy bcrypt verifiers are still accepted by Verify.
type argon2Hasher struct {
	params Argon2Params
	policy PasswordPolicy
}

// NewArgon2Hasher builds the hasher from configuration.
func NewArgon2Hasher(cfg *config.Config) service.CredentialHasher {
	params := DefaultArgon2Params()
	if cfg.Auth != nil {
		a := cfg.Auth.Argon2
		params = Argon2Params{
			Memory:      a.MemoryKiB,
			Iterations:  a.Iterations,
			Parallelism: a.Parallelism,
			SaltLength:  a.SaltLength,
			KeyLength:   a.KeyLength,
		}
	}

	return NewArgon2HasherWithParams(params, NewPasswordPolicy(cfg.PasswordStrength))
}

// NewArgon2HasherWithParams builds a hasher with explicit parameters.
func NewArgon2HasherWithParams(params Argon2Params, policy PasswordPolicy) service.CredentialHasher {
	return &argon2Hasher{params: params, policy: policy}
}

// ValidateSecret applies the strength policy.
func (h *argon2Hasher) ValidateSecret(plaintext string) error {
	return h.policy.Validate(plaintext)
}

// Hash derives an Argon2id verifier with a fresh random salt.
func (h *argon2Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.ValidateSecret(plaintext); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	return encodeArgon2(h.params, salt, key), nil
}

// Verify checks plaintext against an Argon2id or legacy bcrypt verifier in constant time.
func (h *argon2Hasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.WithStack(err)
	}

	if isBcryptHash(hash) {
		return verifyBcrypt(plaintext, hash)
	}

	params, salt, key, err := decodeArgon2(hash)
	if err != nil {
		return false, errors.Wrap(domainerrors.ErrInvalidCredentialFormat, err.Error())
	}
	if err := h.checkBounds(params); err != nil {
		return false, errors.Wrap(domainerrors.ErrInvalidCredentialFormat, err.Error())
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	if err := ctx.Err(); err != nil {
		return false, errors.WithStack(err)
	}

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// NeedsRehash reports bcrypt verifiers and Argon2id verifiers weaker than the current parameters.
func (h *argon2Hasher) NeedsRehash(hash string) bool {
	if isBcryptHash(hash) {
		return true
	}

	params, _, _, err := decodeArgon2(hash)
	if err != nil {
		return false
	}

	return params.Memory < h.params.Memory ||
		params.Iterations < h.params.Iterations ||
		params.Parallelism != h.params.Parallelism ||
		params.KeyLength < h.params.KeyLength
}

// checkBounds rejects work factors far above the configured ones. argon2.IDKey
// cannot be interrupted, so these limits are what keeps Verify within the
// caller's deadline and memory budget.
func (h *argon2Hasher) checkBounds(params *Argon2Params) error {
	switch {
	case uint64(params.Memory) > maxParamFactor*uint64(h.params.Memory):
		return errors.Errorf("argon2 memory %d KiB exceeds limit", params.Memory)
	case uint64(params.Iterations) > maxParamFactor*uint64(h.params.Iterations):
		return errors.Errorf("argon2 iterations %d exceed limit", params.Iterations)
	case uint64(params.Parallelism) > maxParamFactor*uint64(h.params.Parallelism):
		return errors.Errorf("argon2 parallelism %d exceeds limit", params.Parallelism)
	case params.SaltLength > maxSaltLength:
		return errors.Errorf("argon2 salt length %d exceeds limit", params.SaltLength)
	case params.KeyLength > maxKeyLength:
		return errors.Errorf("argon2 key length %d exceeds limit", params.KeyLength)
	}

	return nil
}

func encodeArgon2(params Argon2Params, salt, key []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Algorithm,
		argon2.Version,
		params.Memory, params.Iterations, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// decodeArgon2 parses $argon2id$v=19$m=...,t=...,p=...$salt$key.
func decodeArgon2(encoded string) (*Argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, nil, nil, errors.New("invalid argon2 hash format")
	}
	if parts[1] != argon2Algorithm {
		return nil, nil, nil, errors.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if n, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || n != 1 {
		return nil, nil, nil, errors.New("invalid argon2 version segment")
	}
	if version != argon2.Version {
		return nil, nil, nil, errors.Errorf("unsupported argon2 version %d", version)
	}

	params := &Argon2Params{}
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil || n != 3 {
		return nil, nil, nil, errors.New("invalid argon2 parameter segment")
	}
	if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return nil, nil, nil, errors.New("argon2 parameters must be positive")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, nil, errors.New("invalid argon2 salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, nil, errors.New("invalid argon2 key")
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func verifyBcrypt(plaintext, hash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false, errors.Wrap(domainerrors.ErrInvalidCredentialFormat, err.Error())
	}
	if cost > maxBcryptCost {
		return false, errors.Wrap(domainerrors.ErrInvalidCredentialFormat, fmt.Sprintf("bcrypt cost %d exceeds limit", cost))
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Wrap(domainerrors.ErrInvalidCredentialFormat, err.Error())
	}
}
