package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/threadline/threadline/internal/model"
	"github.com/threadline/threadline/internal/repository"
)

// ResolveRealm looks up a realm by UUID or by subdomain string ID.
// An empty identifier resolves to no realm, which commands treat as
// "operate server-wide".
func ResolveRealm(ctx context.Context, dir Directory, idOrStringID string) (*model.Realm, error) {
	if idOrStringID == "" {
		return nil, nil
	}

	var (
		realm *model.Realm
		err   error
	)
	if _, parseErr := uuid.Parse(idOrStringID); parseErr == nil {
		realm, err = dir.GetRealmByID(ctx, idOrStringID)
	} else {
		realm, err = dir.GetRealmByStringID(ctx, idOrStringID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrRealmNotFound) {
			return nil, fmt.Errorf("there is no realm with id %q", idOrStringID)
		}
		return nil, fmt.Errorf("resolve realm: %w", err)
	}
	return realm, nil
}

// ResolveUser finds a user by email, scoped to realm when one is given
// and searching the whole server otherwise. The server-wide lookup
// fails when the email exists in more than one realm.
func ResolveUser(ctx context.Context, dir Directory, email string, realm *model.Realm) (*model.UserProfile, error) {
	if realm != nil {
		user, err := dir.GetUserByEmailInRealm(ctx, email, realm.ID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, fmt.Errorf("the realm %q does not contain a user with email %q", realm.StringID, email)
			}
			return nil, fmt.Errorf("resolve user: %w", err)
		}
		return user, nil
	}

	user, err := dir.GetUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, fmt.Errorf("this server does not contain a user with email %q", email)
		case errors.Is(err, repository.ErrMultipleUsers):
			return nil, fmt.Errorf("this server contains multiple users with email %q; pass --realm to disambiguate", email)
		default:
			return nil, fmt.Errorf("resolve user: %w", err)
		}
	}
	return user, nil
}

// ResolveUsers turns the -u/--users and -a/--all-users flags into a
// user list. Exactly one of the two must be used, and --all-users only
// makes sense within a realm.
func ResolveUsers(ctx context.Context, dir Directory, emails string, allUsers bool, realm *model.Realm) ([]*model.UserProfile, error) {
	if emails != "" && allUsers {
		return nil, Usagef("you can't use both -u/--users and -a/--all-users")
	}
	if emails == "" && !allUsers {
		return nil, Usagef("you have to pass either -u/--users or -a/--all-users")
	}
	if allUsers && realm == nil {
		return nil, Usagef("the --all-users option requires a realm; please pass --realm")
	}

	if allUsers {
		users, err := dir.ListUsersByRealm(ctx, realm.ID)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		return users, nil
	}

	var users []*model.UserProfile
	for _, email := range strings.Split(emails, ",") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		user, err := ResolveUser(ctx, dir, email, realm)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
