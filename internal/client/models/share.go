// Package models holds the client-side data structures.
package models

// ShareRecord is a locally kept note about a file sent to the server.
// Only the public identifiers are stored; neither the passphrase nor the
// plaintext filename's content ever reaches the history database.
type ShareRecord struct {
	ID            string
	Filename      string
	Size          int64
	SentAt        int64
	ExpiresAt     *int64
	DownloadLimit *int64
}
