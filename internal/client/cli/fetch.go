package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/guardianbox/internal/cryptox"
	"github.com/dmitrijs2005/guardianbox/internal/filex"
	"github.com/dmitrijs2005/guardianbox/internal/shared"
)

// Fetch downloads an envelope, decrypts it with a passphrase and writes
// the recovered file into the configured output directory.
func (a *App) Fetch(ctx context.Context, args []string) error {

	if len(args) < 1 {
		return fmt.Errorf("usage: fetch <id>")
	}
	id := args[0]

	envelope, err := a.api.Download(ctx, id)
	if err != nil {
		return err
	}

	passphrase, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(passphrase)

	filename, plaintext, err := cryptox.Decode(envelope, passphrase)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureSubdDir(a.config.OutputDir)
	if err != nil {
		return err
	}

	// the filename travels inside the envelope, so never trust its path
	target := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(target, plaintext, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	fmt.Fprintf(a.out, "Saved %s\n", target)
	return nil
}
