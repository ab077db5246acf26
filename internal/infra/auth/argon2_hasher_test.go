package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	domainerrors "usersvc/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fastParams = Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func newTestHasher() *argon2Hasher {
	return NewArgon2HasherWithParams(fastParams, PasswordPolicy{MinLength: 8, MaxLength: 64}).(*argon2Hasher)
}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	hasher := newTestHasher()
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$"))
	assert.NotContains(t, hash, "correct horse")

	ok, err := hasher.Verify(ctx, "correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify(ctx, "wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_FreshSaltPerCall(t *testing.T) {
	hasher := newTestHasher()
	ctx := context.Background()

	first, err := hasher.Hash(ctx, "same secret value")
	require.NoError(t, err)
	second, err := hasher.Hash(ctx, "same secret value")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	for _, h := range []string{first, second} {
		ok, err := hasher.Verify(ctx, "same secret value", h)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestArgon2Hasher_WeakSecret(t *testing.T) {
	hasher := newTestHasher()

	for _, weak := range []string{"", "short", "        ", strings.Repeat("x", 65)} {
		_, err := hasher.Hash(context.Background(), weak)
		assert.True(t, errors.Is(err, domainerrors.ErrWeakSecret), "expected weak secret for %q", weak)
	}
}

func TestArgon2Hasher_VerifyMalformed(t *testing.T) {
	hasher := newTestHasher()

	malformed := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=64,t=1,p=1$onlysalt",
		"$argon2i$v=19$m=64,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5a2V5",
		"$2a$10$short",
	}

	for _, hash := range malformed {
		ok, err := hasher.Verify(context.Background(), "anything", hash)
		assert.False(t, ok)
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentialFormat), "expected invalid format for %q, got %v", hash, err)
	}
}

func TestArgon2Hasher_VerifyRejectsInflatedParameters(t *testing.T) {
	hasher := newTestHasher()
	const tail = "$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2U"

	inflated := map[string]string{
		"iterations":  "$argon2id$v=19$m=64,t=200000,p=1" + tail,
		"memory":      "$argon2id$v=19$m=4194304,t=1,p=1" + tail,
		"parallelism": "$argon2id$v=19$m=64,t=1,p=200" + tail,
		"key length":  "$argon2id$v=19$m=64,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$" + strings.Repeat("a2V5", 30),
	}

	for name, hash := range inflated {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			start := time.Now()
			ok, err := hasher.Verify(ctx, "anything", hash)
			assert.False(t, ok)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentialFormat), "got %v", err)
			assert.Less(t, time.Since(start), 200*time.Millisecond)
		})
	}

	// Factors up to the allowed multiple still verify.
	stronger := NewArgon2HasherWithParams(Argon2Params{Memory: 256, Iterations: 4, Parallelism: 1, SaltLength: 16, KeyLength: 32}, PasswordPolicy{MinLength: 1})
	hash, err := stronger.Hash(context.Background(), "password")
	require.NoError(t, err)

	ok, err := hasher.Verify(context.Background(), "password", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2Hasher_VerifyRejectsExpensiveBcrypt(t *testing.T) {
	hasher := newTestHasher()
	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy password"), bcrypt.MinCost)
	require.NoError(t, err)

	expensive := strings.Replace(string(legacy), "$04$", "$31$", 1)

	ok, err := hasher.Verify(context.Background(), "legacy password", expensive)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentialFormat), "got %v", err)
}

func TestArgon2Hasher_VerifyLegacyBcrypt(t *testing.T) {
	hasher := newTestHasher()
	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy password"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := hasher.Verify(context.Background(), "legacy password", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify(context.Background(), "not it", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, hasher.NeedsRehash(string(legacy)))
}

func TestArgon2Hasher_NeedsRehash(t *testing.T) {
	weak := NewArgon2HasherWithParams(fastParams, PasswordPolicy{MinLength: 1})
	strong := NewArgon2HasherWithParams(Argon2Params{Memory: 128, Iterations: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32}, PasswordPolicy{MinLength: 1})

	hash, err := weak.Hash(context.Background(), "password")
	require.NoError(t, err)

	assert.False(t, weak.NeedsRehash(hash))
	assert.True(t, strong.NeedsRehash(hash))
}

func TestArgon2Hasher_Cancelled(t *testing.T) {
	hasher := newTestHasher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hasher.Hash(ctx, "long enough secret")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = hasher.Verify(ctx, "long enough secret", "$argon2id$v=19$m=64,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPasswordPolicy_CharacterClasses(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumbers:   true,
		RequireSpecial:   true,
	}

	assert.NoError(t, policy.Validate("StrongPass123!"))

	for _, weak := range []string{"PASSWORD123!", "password123!", "PasswordABC!", "Password123"} {
		err := policy.Validate(weak)
		assert.True(t, errors.Is(err, domainerrors.ErrWeakSecret), "expected weak secret for %q", weak)
	}
}
