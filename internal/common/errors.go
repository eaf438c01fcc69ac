// Package common defines shared constants and sentinel errors used across
// client and server layers of GuardianBox. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate id")

	// Lifecycle errors surfaced on the read path.
	ErrExpired      = errors.New("file expired")
	ErrLimitReached = errors.New("download limit reached")

	// Storage-level errors.
	ErrUploadFailed       = errors.New("upload failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidPath        = errors.New("invalid storage path")

	// Client-side only: AEAD authentication failure or malformed envelope.
	// Deliberately a single value so callers cannot tell a wrong passphrase
	// from tampered ciphertext.
	ErrDecryptionFailed = errors.New("decryption failed")
)
