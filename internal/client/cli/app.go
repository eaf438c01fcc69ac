// Package cli implements the GuardianBox command line client: encrypt and
// send a file, fetch and decrypt one, inspect metadata and list the local
// send history.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/guardianbox/internal/client/api"
	"github.com/dmitrijs2005/guardianbox/internal/client/config"
	"github.com/dmitrijs2005/guardianbox/internal/client/db"
)

type App struct {
	config *config.Config
	api    *api.Client
	repos  *db.Repositories
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	repos, err := db.InitDatabase(ctx, c.HistoryDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := api.New(c.ServerEndpointAddr, c.RequestTimeout)

	return &App{
		config: c,
		api:    apiClient,
		repos:  repos,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Close() {
	if a.repos != nil && a.repos.DB != nil {
		_ = a.repos.DB.Close()
	}
}

// Run dispatches a single command. Args is os.Args[1:] with any
// configuration flags already consumed by the config package.
func (a *App) Run(ctx context.Context, args []string) error {

	args = stripFlags(args)

	if len(args) == 0 {
		a.usage()
		return nil
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "send":
		return a.Send(ctx, rest)
	case "fetch":
		return a.Fetch(ctx, rest)
	case "info":
		return a.Info(ctx, rest)
	case "history":
		return a.History(ctx)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage:")
	fmt.Fprintln(a.out, "  send <path> [expires_seconds] [download_limit]   encrypt and upload a file")
	fmt.Fprintln(a.out, "  fetch <id>                                       download and decrypt a file")
	fmt.Fprintln(a.out, "  info <id>                                        show file metadata")
	fmt.Fprintln(a.out, "  history                                          list sent files")
}

// stripFlags drops "-flag value" and "-flag=value" arguments so positional
// arguments can follow or precede the configuration flags handled elsewhere.
func stripFlags(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) > 0 && arg[0] == '-' {
			if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++ // skip the flag's value
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}
