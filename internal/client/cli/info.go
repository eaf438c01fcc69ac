package cli

import (
	"context"
	"fmt"
	"time"
)

// Info prints the public metadata of a stored file.
func (a *App) Info(ctx context.Context, args []string) error {

	if len(args) < 1 {
		return fmt.Errorf("usage: info <id>")
	}

	m, err := a.api.Metadata(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "id:             %s\n", m.ID)
	fmt.Fprintf(a.out, "size:           %d bytes\n", m.Size)
	fmt.Fprintf(a.out, "uploaded:       %s\n", formatUnix(m.UploadedAt))
	if m.ExpiresAt != nil {
		fmt.Fprintf(a.out, "expires:        %s\n", formatUnix(*m.ExpiresAt))
	} else {
		fmt.Fprintf(a.out, "expires:        never\n")
	}
	if m.DownloadLimit != nil {
		fmt.Fprintf(a.out, "downloads:      %d of %d\n", m.DownloadsDone, *m.DownloadLimit)
	} else {
		fmt.Fprintf(a.out, "downloads:      %d (unlimited)\n", m.DownloadsDone)
	}
	return nil
}

func formatUnix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
