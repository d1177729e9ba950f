package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/threadline/threadline/internal/model"
	"github.com/threadline/threadline/internal/repository"
	"github.com/threadline/threadline/internal/webhook"
)

// LinkIssuer is the creation-link service surface the CLI uses.
type LinkIssuer interface {
	Issue(ctx context.Context) (*model.CreationKey, string, error)
}

// GenerateCreationLink issues a single-use realm creation link and
// writes its URL to out, as plain text or a JSON object.
func GenerateCreationLink(ctx context.Context, issuer LinkIssuer, out io.Writer, asJSON bool) error {
	rec, url, err := issuer.Issue(ctx)
	if err != nil {
		return fmt.Errorf("generate creation link: %w", err)
	}

	if asJSON {
		return json.NewEncoder(out).Encode(map[string]string{
			"url":        url,
			"created_at": rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	fmt.Fprintln(out, url)
	return nil
}

// SendWebhookFixture loads a JSON fixture from fixtureRoot and POSTs it
// to targetURL with signed replay headers. Bad input (missing flags,
// missing file, malformed JSON) is reported as a usage error.
func SendWebhookFixture(ctx context.Context, replayer *webhook.Replayer, fixtureRoot, fixtureName, targetURL string, out io.Writer) error {
	if fixtureName == "" {
		return Usagef("missing fixture file path; pass --fixture")
	}
	if targetURL == "" {
		return Usagef("missing target URL; pass --url")
	}

	fixture, err := webhook.LoadFixture(fixtureRoot, fixtureName)
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrFixtureNotFound):
			return Usagef("fixture %q does not exist", fixtureName)
		case errors.Is(err, webhook.ErrFixtureNotJSON):
			return Usagef("fixture %q is not valid JSON", fixtureName)
		default:
			return fmt.Errorf("load fixture: %w", err)
		}
	}

	result, err := replayer.Replay(ctx, fixture, targetURL)
	if err != nil {
		return fmt.Errorf("send fixture: %w", err)
	}

	fmt.Fprintf(out, "%d\n", result.StatusCode)
	if result.Body != "" {
		fmt.Fprintln(out, result.Body)
	}
	return nil
}

// KeyRevoker is the admin-key repository surface the revoke command uses.
type KeyRevoker interface {
	RevokeAdminKey(ctx context.Context, id string) error
}

// RevokeAdminKey revokes an admin API key by ID. Revoked keys stop
// authenticating immediately; there is no un-revoke.
func RevokeAdminKey(ctx context.Context, store KeyRevoker, id string, out io.Writer) error {
	if id == "" {
		return Usagef("missing key ID; pass --id")
	}

	if err := store.RevokeAdminKey(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAdminKeyNotFound) {
			return fmt.Errorf("no active admin key with id %q", id)
		}
		return fmt.Errorf("revoke admin key: %w", err)
	}

	fmt.Fprintf(out, "revoked admin key %s\n", id)
	return nil
}

// ListUsersOptions are the flags of the list-users subcommand.
type ListUsersOptions struct {
	Emails   string // Comma-separated, mutually exclusive with AllUsers
	AllUsers bool
	Realm    string // UUID or subdomain; required with AllUsers
}

// ListUsers resolves the requested users and writes one line per user.
func ListUsers(ctx context.Context, dir Directory, opts ListUsersOptions, out io.Writer) error {
	realm, err := ResolveRealm(ctx, dir, opts.Realm)
	if err != nil {
		return err
	}

	users, err := ResolveUsers(ctx, dir, opts.Emails, opts.AllUsers, realm)
	if err != nil {
		return err
	}

	for _, user := range users {
		status := "active"
		if !user.IsActive {
			status = "deactivated"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", user.Email, user.FullName, status)
	}
	return nil
}

// ShowRealm resolves one realm and prints its details.
func ShowRealm(ctx context.Context, dir Directory, idOrStringID string, out io.Writer) error {
	if idOrStringID == "" {
		return Usagef("missing realm; pass --realm with a UUID or subdomain")
	}

	realm, err := ResolveRealm(ctx, dir, idOrStringID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "id:         %s\n", realm.ID)
	fmt.Fprintf(out, "string_id:  %s\n", realm.StringID)
	fmt.Fprintf(out, "name:       %s\n", realm.Name)
	if len(realm.Domains) > 0 {
		fmt.Fprintf(out, "domains:    %s\n", strings.Join(realm.Domains, ", "))
	}
	fmt.Fprintf(out, "created_at: %s\n", realm.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	if realm.DeactivatedAt != nil {
		fmt.Fprintf(out, "status:     deactivated at %s\n", realm.DeactivatedAt.UTC().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintf(out, "status:     active\n")
	}
	return nil
}
