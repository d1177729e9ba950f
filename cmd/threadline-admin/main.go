// Package main is the entrypoint for the threadline-admin CLI.
//
// Subcommands return errors instead of exiting; this shell maps them to
// process exit codes: 2 for usage errors, 1 for runtime failures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/threadline/threadline/internal/admin"
	"github.com/threadline/threadline/internal/creationlink"
	"github.com/threadline/threadline/internal/repository"
	"github.com/threadline/threadline/internal/webhook"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	ctx := context.Background()
	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "generate-creation-link":
		err = runGenerateCreationLink(ctx, args)
	case "send-webhook-fixture":
		err = runSendWebhookFixture(ctx, args)
	case "list-users":
		err = runListUsers(ctx, args)
	case "show-realm":
		err = runShowRealm(ctx, args)
	case "purge-creation-links":
		err = runPurgeCreationLinks(ctx, args)
	case "revoke-admin-key":
		err = runRevokeAdminKey(ctx, args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		printUsage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if admin.IsUsage(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func printUsage(out *os.File) {
	fmt.Fprint(out, `Usage: threadline-admin <command> [flags]

Commands:
  generate-creation-link   Issue a single-use realm creation link
  send-webhook-fixture     POST a JSON fixture file to a webhook URL
  list-users               List users by email or realm
  show-realm               Print one realm's details
  purge-creation-links     Delete creation keys older than the validity window
  revoke-admin-key         Revoke an admin API key by ID
  help                     Show this message

Run 'threadline-admin <command> -h' for command flags.
`)
}

// openRepository connects to Postgres and registers cleanup on ctx end.
func openRepository(ctx context.Context, databaseURL string) (*repository.Repository, error) {
	if databaseURL == "" {
		return nil, admin.Usagef("DATABASE_URL is required; set the env var or pass --database-url")
	}
	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return repo, nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runGenerateCreationLink(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate-creation-link", flag.ExitOnError)
	databaseURL := fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	baseURL := fs.String("base-url", envOr("BASE_URL", "http://localhost:8080"), "Deployment base URL")
	validityDays := fs.Int("validity-days", envInt("CREATION_LINK_VALIDITY_DAYS", 7), "Days the link stays redeemable")
	asJSON := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	if *validityDays <= 0 {
		return admin.Usagef("validity-days must be positive, got %d", *validityDays)
	}

	repo, err := openRepository(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc := creationlink.NewService(repo, *baseURL, time.Duration(*validityDays)*24*time.Hour, nil)
	return admin.GenerateCreationLink(ctx, svc, os.Stdout, *asJSON)
}

func runSendWebhookFixture(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send-webhook-fixture", flag.ExitOnError)
	fixture := fs.String("fixture", "", "Fixture path relative to the fixture root")
	targetURL := fs.String("url", "", "Webhook URL to POST the fixture to")
	fixtureRoot := fs.String("fixture-root", envOr("WEBHOOK_FIXTURE_ROOT", "fixtures"), "Directory containing fixture files")
	secret := fs.String("secret", os.Getenv("WEBHOOK_FIXTURE_SECRET"), "HMAC signing secret; empty sends unsigned")
	_ = fs.Parse(args)

	replayer := webhook.NewReplayer(nil, *secret)
	return admin.SendWebhookFixture(ctx, replayer, *fixtureRoot, *fixture, *targetURL, os.Stdout)
}

func runListUsers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ExitOnError)
	databaseURL := fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	var opts admin.ListUsersOptions
	fs.StringVar(&opts.Emails, "u", "", "Comma-separated emails (shorthand)")
	fs.StringVar(&opts.Emails, "users", "", "Comma-separated emails")
	fs.BoolVar(&opts.AllUsers, "a", false, "All users in the realm (shorthand)")
	fs.BoolVar(&opts.AllUsers, "all-users", false, "All users in the realm")
	fs.StringVar(&opts.Realm, "r", "", "Realm UUID or subdomain (shorthand)")
	fs.StringVar(&opts.Realm, "realm", "", "Realm UUID or subdomain")
	_ = fs.Parse(args)

	repo, err := openRepository(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	return admin.ListUsers(ctx, repo, opts, os.Stdout)
}

func runShowRealm(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show-realm", flag.ExitOnError)
	databaseURL := fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	realm := fs.String("realm", "", "Realm UUID or subdomain")
	_ = fs.Parse(args)

	// Also accept the realm as a positional argument.
	if *realm == "" && fs.NArg() > 0 {
		*realm = fs.Arg(0)
	}

	repo, err := openRepository(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	return admin.ShowRealm(ctx, repo, *realm, os.Stdout)
}

func runPurgeCreationLinks(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("purge-creation-links", flag.ExitOnError)
	databaseURL := fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	olderThanDays := fs.Int("older-than-days", envInt("CREATION_LINK_VALIDITY_DAYS", 7), "Delete keys created more than this many days ago")
	_ = fs.Parse(args)

	if *olderThanDays <= 0 {
		return admin.Usagef("older-than-days must be positive, got %d", *olderThanDays)
	}

	repo, err := openRepository(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	cutoff := time.Now().UTC().Add(-time.Duration(*olderThanDays) * 24 * time.Hour)
	purged, err := repo.PurgeStaleCreationKeys(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge creation keys: %w", err)
	}

	fmt.Printf("purged %d stale creation keys\n", purged)
	return nil
}

func runRevokeAdminKey(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("revoke-admin-key", flag.ExitOnError)
	databaseURL := fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	id := fs.String("id", "", "Admin key ID to revoke")
	_ = fs.Parse(args)

	// Also accept the ID as a positional argument.
	if *id == "" && fs.NArg() > 0 {
		*id = fs.Arg(0)
	}

	repo, err := openRepository(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	return admin.RevokeAdminKey(ctx, repo, *id, os.Stdout)
}
