// Package cryptox implements the GuardianBox encryption envelope: a
// self-describing artifact carrying a file and its original name, sealed
// under a passphrase-derived key. Encoding and decoding happen on the
// client side only; the server stores envelopes as opaque blobs.
//
// Wire format:
//
//	bytes [0:16]  random salt
//	bytes [16:28] random AES-GCM nonce
//	bytes [28:]   ciphertext with trailing authentication tag
//
// The authenticated plaintext is a package of
// [4-byte big-endian filename length][filename][file bytes], so the
// filename cannot be tampered with independently of the content.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"

	"github.com/dmitrijs2005/guardianbox/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32

	// KDFIterations is the PBKDF2-SHA256 iteration count. Each passphrase
	// guess costs the full derivation, which is the only brute-force
	// hardening the envelope has.
	KDFIterations = 200000
)

// DeriveKey derives the 256-bit AES key from a passphrase and salt.
// Deterministic: the same inputs always produce the same key.
func DeriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, KDFIterations, keySize, sha256.New)
}

// Encode seals file and filename under passphrase and returns the envelope.
// A fresh salt and nonce are generated per call, so encrypting the same
// file twice never yields the same bytes.
func Encode(file []byte, filename string, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	aesgcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	name := []byte(filename)
	plaintext := make([]byte, 4+len(name)+len(file))
	binary.BigEndian.PutUint32(plaintext[:4], uint32(len(name)))
	copy(plaintext[4:], name)
	copy(plaintext[4+len(name):], file)

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+aesgcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aesgcm.Seal(out, nonce, plaintext, nil)

	return out, nil
}

// Decode opens an envelope with the given passphrase and returns the
// original filename and file bytes. Every failure mode (truncated
// envelope, wrong passphrase, flipped ciphertext bits, corrupt length
// prefix) is reported as common.ErrDecryptionFailed so the caller cannot
// be used as a padding/tamper oracle.
func Decode(envelope, passphrase []byte) (string, []byte, error) {
	if len(envelope) < saltSize+nonceSize {
		return "", nil, common.ErrDecryptionFailed
	}
	salt := envelope[:saltSize]
	nonce := envelope[saltSize : saltSize+nonceSize]
	ciphertext := envelope[saltSize+nonceSize:]

	aesgcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return "", nil, common.ErrDecryptionFailed
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", nil, common.ErrDecryptionFailed
	}

	if len(plaintext) < 4 {
		return "", nil, common.ErrDecryptionFailed
	}
	nameLen := binary.BigEndian.Uint32(plaintext[:4])
	if uint64(nameLen) > uint64(len(plaintext)-4) {
		return "", nil, common.ErrDecryptionFailed
	}

	filename := string(plaintext[4 : 4+nameLen])
	return filename, plaintext[4+nameLen:], nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
