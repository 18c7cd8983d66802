// Package admin implements minibi-admin, the operator tool that works on
// the configured store directly: migrations, listing and registering
// accounts, and deleting an account with everything it owns.
package admin

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/logging"
	"github.com/dmitrijs2005/minibi/internal/server/config"
	"github.com/dmitrijs2005/minibi/internal/server/credentials"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minibi/internal/server/revocation"
	"github.com/dmitrijs2005/minibi/internal/server/services"
)

const usage = `usage: minibi-admin [flags] <command>

commands:
  migrate                    apply pending schema migrations
  users                      list usernames
  register <username>        create an account, the secret is prompted
  delete-account <username>  delete an account and everything it owns
`

var ErrUsage = errors.New("bad usage")

type App struct {
	db       *sql.DB
	identity *services.IdentityService
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the store, which also applies pending migrations.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	verifier, err := credentials.New(c.CredentialScheme)
	if err != nil {
		return nil, err
	}

	db, m, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{
		db:       db,
		identity: services.NewIdentityService(db, m, verifier, revocation.NewMemoryStore(), logger, c),
		reader:   bufio.NewReader(in),
		out:      out,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run executes one command given as positional arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		fmt.Fprintln(a.out, "Schema is up to date")
		return nil
	case "users":
		return a.users(ctx)
	case "register":
		if len(rest) != 1 {
			return fmt.Errorf("%w: register <username>", ErrUsage)
		}
		return a.register(ctx, rest[0])
	case "delete-account":
		if len(rest) != 1 {
			return fmt.Errorf("%w: delete-account <username>", ErrUsage)
		}
		return a.deleteAccount(ctx, rest[0])
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	}

	fmt.Fprint(a.out, usage)
	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

func (a *App) users(ctx context.Context) error {
	names, err := a.identity.ListUsernames(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(a.out, n)
	}
	return nil
}

func (a *App) register(ctx context.Context, username string) error {
	secret, err := GetSecret(a.out, "Enter secret")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	id, err := a.identity.Register(ctx, username, string(secret))
	if err != nil {
		return fmt.Errorf("%s: %w", common.Message(err), err)
	}

	fmt.Fprintf(a.out, "Registered %s (id %d)\n", username, id)
	return nil
}

// deleteAccount asks for the username a second time before deleting.
func (a *App) deleteAccount(ctx context.Context, username string) error {
	id, err := a.identity.LookupID(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", common.Message(err), err)
	}

	confirm, err := GetSimpleText(a.reader, fmt.Sprintf("Type %q to delete the account and all its notes, files and shares", username), a.out)
	if err != nil {
		return err
	}
	if confirm != username {
		fmt.Fprintln(a.out, "Aborted")
		return nil
	}

	if err := a.identity.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", common.Message(err), err)
	}

	fmt.Fprintf(a.out, "Deleted %s\n", username)
	return nil
}
