package cli

import (
	"context"
	"fmt"
)

// History lists the locally recorded sent files.
func (a *App) History(ctx context.Context) error {

	recs, err := a.repos.History.GetAll(ctx)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No files sent yet")
		return nil
	}

	for _, r := range recs {
		line := fmt.Sprintf("%s  %s  %d bytes  sent %s", r.ID, r.Filename, r.Size, formatUnix(r.SentAt))
		if r.ExpiresAt != nil {
			line += fmt.Sprintf("  expires %s", formatUnix(*r.ExpiresAt))
		}
		if r.DownloadLimit != nil {
			line += fmt.Sprintf("  limit %d", *r.DownloadLimit)
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}
