package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/config"
	"github.com/aoiro-dev/aoiro/internal/logging"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/storage"
)

type globalFlags struct {
	configPath string
	user       string
	year       int
	debug      bool
}

// app is the per-invocation environment shared by subcommands.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	store  *storage.Store
	userID string
	year   int
	out    io.Writer
}

var errNoUser = common.NewUserError(
	errors.New("no user id configured"),
	"ユーザーIDが設定されていません (--user, AOIRO_USER または aoiro.yaml の user.id)",
)

// open loads config, opens and migrates the store, and resolves the user
// and fiscal year.
func (g *globalFlags) open(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewUserError(err, fmt.Sprintf("%s が見つかりません。先に aoiro init を実行してください", g.configPath))
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", g.configPath, err)
	}

	level := cfg.Log.Level
	if g.debug {
		level = "debug"
	}
	log, err := logging.New(level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, userID: cfg.User.ID, year: cfg.SelectedYear(time.Now()), out: cmd.OutOrStdout()}
	if g.user != "" {
		a.userID = g.user
	}
	if a.userID == "" {
		return nil, errNoUser
	}
	if g.year != 0 {
		a.year = g.year
	}
	if a.year <= 0 {
		return nil, common.ErrInvalidYear
	}

	ctx := cmd.Context()
	a.store, err = storage.Open(ctx, cfg.Database.Driver, cfg.DSN(), log)
	if err != nil {
		return nil, err
	}
	if err := a.store.Migrate(ctx); err != nil {
		a.store.Close()
		return nil, err
	}
	log.WithFields(logrus.Fields{"user_id": a.userID, "year": a.year, "driver": cfg.Database.Driver}).Debug("opened books")
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp wraps a RunE body that needs an open app.
func (g *globalFlags) withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := g.open(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd.Context(), a, args)
	}
}

// account resolves an account by name for the current user.
func (a *app) account(ctx context.Context, name string) (*model.Account, error) {
	acct, err := accounts.NewRegistry(a.store, a.log).FindByName(ctx, a.userID, name)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(err, fmt.Sprintf("勘定科目「%s」が見つかりません", name))
	}
	return acct, err
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

var printer = message.NewPrinter(language.Japanese)

// yen formats an amount with digit grouping.
func yen(n int64) string {
	return printer.Sprintf("%d", n)
}

// side names a debit or credit position.
func side(isDebit bool) string {
	if isDebit {
		return "借方"
	}
	return "貸方"
}
