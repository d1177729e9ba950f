// Package admin implements the operator command layer: realm and user
// resolution helpers plus the operations behind the threadline-admin
// subcommands. Commands return errors instead of exiting so the CLI
// shell owns process exit codes.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/threadline/threadline/internal/model"
)

// Directory is the subset of the data layer the command helpers need.
type Directory interface {
	GetRealmByID(ctx context.Context, id string) (*model.Realm, error)
	GetRealmByStringID(ctx context.Context, stringID string) (*model.Realm, error)
	GetUserByEmailInRealm(ctx context.Context, email, realmID string) (*model.UserProfile, error)
	GetUserByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	ListUsersByRealm(ctx context.Context, realmID string) ([]*model.UserProfile, error)
	ListRealms(ctx context.Context) ([]*model.Realm, error)
}

// UsageError marks an error caused by bad flags or arguments rather
// than a runtime failure. The CLI shell maps it to exit code 2.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

// Usagef builds a UsageError from a format string.
func Usagef(format string, args ...any) *UsageError {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// IsUsage reports whether err is a UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
