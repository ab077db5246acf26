// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "context"

// CredentialHasher turns plaintext secrets into storable verifiers and checks login attempts.
type CredentialHasher interface {
	// Hash returns a salted verifier. Two calls with the same plaintext yield
	// different outputs. Fails with ErrWeakSecret when the plaintext is rejected
	// by the strength policy.
	Hash(ctx context.Context, plaintext string) (string, error)

	// Verify reports whether plaintext matches the verifier. A mismatch is
	// (false, nil); a malformed verifier is ErrInvalidCredentialFormat.
	Verify(ctx context.Context, plaintext, hash string) (bool, error)

	// NeedsRehash reports whether the verifier was produced with an outdated
	// algorithm or weaker parameters than the current ones.
	NeedsRehash(hash string) bool

	// ValidateSecret applies the strength policy without hashing.
	ValidateSecret(plaintext string) error
}
