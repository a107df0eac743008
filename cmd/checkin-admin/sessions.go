package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	redisadapter "github.com/clientcheckin/checkin-web/internal/adapters/redis"
	"github.com/clientcheckin/checkin-web/internal/bootstrap"
	domainauth "github.com/clientcheckin/checkin-web/internal/domain/auth"
)

// sessionStore is the part of the Redis session store the session commands use.
type sessionStore interface {
	List(ctx context.Context) ([]domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// openSessionStore connects to the configured Redis deployment.
//
//nolint:ireturn // commands depend on the narrow interface.
func openSessionStore(cmdCtx *commandContext) (sessionStore, func(), error) {
	client, err := bootstrap.ConnectRedis(cmdCtx.Ctx, bootstrap.RedisConnectConfig{
		Redis:  cmdCtx.Config.Redis,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	closeFn := func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Error("close redis failed", "error", cerr)
		}
	}
	store, err := redisadapter.NewSessionStore(redisadapter.SessionStoreOptions{
		Client: client,
		Prefix: cmdCtx.Config.Redis.KeyPrefix,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}

type listSessionsOptions struct {
	Email string
}

func parseListSessionsFlags(args []string) (listSessionsOptions, error) {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts listSessionsOptions
	fs.StringVar(&opts.Email, "email", "", "Only list sessions of this user")
	if err := fs.Parse(args); err != nil {
		return listSessionsOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	return opts, nil
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseListSessionsFlags(args)
	if err != nil {
		return err
	}
	store, closeFn, err := cmdCtx.Sessions(cmdCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	sessions, err := store.List(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	sessions = filterByEmail(sessions, opts.Email)
	if len(sessions) == 0 {
		return writef(cmdCtx.Out, "No sessions found.\n")
	}

	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
	if err := writef(tw, "ID\tEMAIL\tNAME\tEXPIRES IN\n"); err != nil {
		return err
	}
	now := time.Now()
	for _, s := range sessions {
		if err := writef(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Email, s.Name, renderTTL(s.ExpiresAt.Sub(now))); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "\n%d session(s)\n", len(sessions))
}

func filterByEmail(sessions []domainauth.Session, email string) []domainauth.Session {
	if email == "" {
		return sessions
	}
	out := sessions[:0:0]
	for _, s := range sessions {
		if strings.EqualFold(s.Email, email) {
			out = append(out, s)
		}
	}
	return out
}

func renderTTL(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	return d.Round(time.Second).String()
}

type revokeOptions struct {
	ID     string
	Email  string
	DryRun bool
	Yes    bool
}

func parseRevokeFlags(args []string) (revokeOptions, error) {
	fs := flag.NewFlagSet("revoke-session", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts revokeOptions
	fs.StringVar(&opts.ID, "id", "", "Session ID to revoke")
	fs.StringVar(&opts.Email, "email", "", "Revoke every session of this user")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print actions without executing")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return revokeOptions{}, err
	}

	opts.ID = strings.TrimSpace(opts.ID)
	opts.Email = strings.TrimSpace(opts.Email)
	if (opts.ID == "") == (opts.Email == "") {
		return revokeOptions{}, errors.New("exactly one of --id or --email is required")
	}
	return opts, nil
}

func runRevokeSession(cmdCtx *commandContext, args []string) error {
	opts, err := parseRevokeFlags(args)
	if err != nil {
		return err
	}
	store, closeFn, err := cmdCtx.Sessions(cmdCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	ids := []string{opts.ID}
	target := fmt.Sprintf("session %q", opts.ID)
	if opts.Email != "" {
		sessions, listErr := store.List(cmdCtx.Ctx)
		if listErr != nil {
			return fmt.Errorf("list sessions: %w", listErr)
		}
		ids = ids[:0]
		for _, s := range filterByEmail(sessions, opts.Email) {
			ids = append(ids, s.ID)
		}
		target = fmt.Sprintf("%d session(s) of %s", len(ids), opts.Email)
		if len(ids) == 0 {
			return writef(cmdCtx.Out, "No sessions found for %s.\n", opts.Email)
		}
	}

	return deleteSessions(cmdCtx, store, ids, confirmOptions{DryRun: opts.DryRun, Yes: opts.Yes, Target: target})
}

type purgeOptions struct {
	DryRun bool
	Yes    bool
}

func runPurgeSessions(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("purge-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts purgeOptions
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print actions without executing")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, closeFn, err := cmdCtx.Sessions(cmdCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	sessions, err := store.List(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return writef(cmdCtx.Out, "No sessions found.\n")
	}
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return deleteSessions(cmdCtx, store, ids, confirmOptions{
		DryRun: opts.DryRun,
		Yes:    opts.Yes,
		Target: fmt.Sprintf("all %d session(s)", len(ids)),
	})
}

func deleteSessions(cmdCtx *commandContext, store sessionStore, ids []string, opts confirmOptions) error {
	if err := confirmAction(cmdCtx, opts, "sign out"); err != nil {
		return err
	}
	if opts.DryRun {
		for _, id := range ids {
			if err := writef(cmdCtx.Out, "[dry-run] would revoke %s\n", id); err != nil {
				return err
			}
		}
		return nil
	}

	var errs []error
	revoked := 0
	for _, id := range ids {
		if err := store.Delete(cmdCtx.Ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("revoke %s: %w", id, err))
			continue
		}
		revoked++
	}
	if err := writef(cmdCtx.Out, "Revoked %d session(s).\n", revoked); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
