package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmitrijs2005/guardianbox/internal/client/models"
	"github.com/dmitrijs2005/guardianbox/internal/cryptox"
	"github.com/dmitrijs2005/guardianbox/internal/shared"
)

// Send encrypts a file with a passphrase and uploads the envelope.
// Positional arguments: path, optional expiry in seconds, optional
// download limit.
func (a *App) Send(ctx context.Context, args []string) error {

	if len(args) < 1 {
		return fmt.Errorf("usage: send <path> [expires_seconds] [download_limit]")
	}

	path := args[0]
	expiresIn, limit, err := parsePolicyArgs(args[1:])
	if err != nil {
		return err
	}

	plaintext, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	passphrase, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(passphrase)

	envelope, err := cryptox.Encode(plaintext, filepath.Base(path), passphrase)
	if err != nil {
		return err
	}

	result, err := a.api.Upload(ctx, envelope, expiresIn, limit)
	if err != nil {
		return err
	}

	if err := a.recordShare(ctx, result.ID, filepath.Base(path), int64(len(envelope)), expiresIn, limit); err != nil {
		// the upload itself succeeded, so only warn
		fmt.Fprintf(a.out, "warning: could not record share locally: %v\n", err)
	}

	fmt.Fprintf(a.out, "Uploaded %s\n", filepath.Base(path))
	fmt.Fprintf(a.out, "  id:  %s\n", result.ID)
	fmt.Fprintf(a.out, "  url: %s%s\n", a.config.ServerEndpointAddr, result.DownloadURL)
	return nil
}

func parsePolicyArgs(args []string) (expiresIn, limit *int64, err error) {
	if len(args) > 0 {
		v, perr := strconv.ParseInt(args[0], 10, 64)
		if perr != nil || v < 0 {
			return nil, nil, fmt.Errorf("invalid expires_seconds: %s", args[0])
		}
		expiresIn = &v
	}
	if len(args) > 1 {
		v, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil || v < 0 {
			return nil, nil, fmt.Errorf("invalid download_limit: %s", args[1])
		}
		limit = &v
	}
	return expiresIn, limit, nil
}

func (a *App) recordShare(ctx context.Context, id, filename string, size int64, expiresIn, limit *int64) error {
	now := time.Now().Unix()

	rec := &models.ShareRecord{
		ID:            id,
		Filename:      filename,
		Size:          size,
		SentAt:        now,
		DownloadLimit: limit,
	}
	if expiresIn != nil {
		e := now + *expiresIn
		rec.ExpiresAt = &e
	}

	return a.repos.History.Insert(ctx, rec)
}
