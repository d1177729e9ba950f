package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/threadline/threadline/internal/model"
	"github.com/threadline/threadline/internal/repository"
)

// fakeDirectory backs the resolution helpers with in-memory data.
type fakeDirectory struct {
	realms []*model.Realm
	users  []*model.UserProfile
}

func (f *fakeDirectory) GetRealmByID(_ context.Context, id string) (*model.Realm, error) {
	for _, r := range f.realms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repository.ErrRealmNotFound
}

func (f *fakeDirectory) GetRealmByStringID(_ context.Context, stringID string) (*model.Realm, error) {
	for _, r := range f.realms {
		if r.StringID == stringID {
			return r, nil
		}
	}
	return nil, repository.ErrRealmNotFound
}

func (f *fakeDirectory) GetUserByEmailInRealm(_ context.Context, email, realmID string) (*model.UserProfile, error) {
	for _, u := range f.users {
		if u.RealmID == realmID && strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeDirectory) GetUserByEmail(_ context.Context, email string) (*model.UserProfile, error) {
	var matches []*model.UserProfile
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 0:
		return nil, repository.ErrUserNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, repository.ErrMultipleUsers
	}
}

func (f *fakeDirectory) ListUsersByRealm(_ context.Context, realmID string) ([]*model.UserProfile, error) {
	var users []*model.UserProfile
	for _, u := range f.users {
		if u.RealmID == realmID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeDirectory) ListRealms(_ context.Context) ([]*model.Realm, error) {
	return f.realms, nil
}

func newFakeDirectory() (*fakeDirectory, *model.Realm, *model.Realm) {
	acme := &model.Realm{
		ID:        uuid.NewString(),
		StringID:  "acme",
		Name:      "Acme Corp",
		CreatedAt: time.Now().UTC(),
	}
	lear := &model.Realm{
		ID:        uuid.NewString(),
		StringID:  "lear",
		Name:      "Lear & Co",
		CreatedAt: time.Now().UTC(),
	}
	dir := &fakeDirectory{
		realms: []*model.Realm{acme, lear},
		users: []*model.UserProfile{
			{ID: uuid.NewString(), RealmID: acme.ID, Email: "iago@acme.example", FullName: "Iago", IsActive: true},
			{ID: uuid.NewString(), RealmID: acme.ID, Email: "othello@acme.example", FullName: "Othello", IsActive: true},
			{ID: uuid.NewString(), RealmID: lear.ID, Email: "cordelia@lear.example", FullName: "Cordelia", IsActive: true},
			// Same email in both realms, for ambiguity checks.
			{ID: uuid.NewString(), RealmID: lear.ID, Email: "iago@acme.example", FullName: "Other Iago", IsActive: false},
		},
	}
	return dir, acme, lear
}

func TestResolveRealm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir, acme, _ := newFakeDirectory()

	t.Run("empty resolves to nil", func(t *testing.T) {
		realm, err := ResolveRealm(ctx, dir, "")
		if err != nil {
			t.Fatalf("ResolveRealm() error = %v", err)
		}
		if realm != nil {
			t.Errorf("realm = %+v, want nil", realm)
		}
	})

	t.Run("by UUID", func(t *testing.T) {
		realm, err := ResolveRealm(ctx, dir, acme.ID)
		if err != nil {
			t.Fatalf("ResolveRealm() error = %v", err)
		}
		if realm.StringID != "acme" {
			t.Errorf("StringID = %q", realm.StringID)
		}
	})

	t.Run("by string ID", func(t *testing.T) {
		realm, err := ResolveRealm(ctx, dir, "acme")
		if err != nil {
			t.Fatalf("ResolveRealm() error = %v", err)
		}
		if realm.ID != acme.ID {
			t.Errorf("ID = %q, want %q", realm.ID, acme.ID)
		}
	})

	t.Run("unknown realm", func(t *testing.T) {
		_, err := ResolveRealm(ctx, dir, "nonexistent")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "there is no realm with id") {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("unknown UUID", func(t *testing.T) {
		_, err := ResolveRealm(ctx, dir, uuid.NewString())
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "there is no realm with id") {
			t.Errorf("error = %q", err)
		}
	})
}

func TestResolveUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir, acme, lear := newFakeDirectory()

	t.Run("realm scoped", func(t *testing.T) {
		user, err := ResolveUser(ctx, dir, "othello@acme.example", acme)
		if err != nil {
			t.Fatalf("ResolveUser() error = %v", err)
		}
		if user.FullName != "Othello" {
			t.Errorf("FullName = %q", user.FullName)
		}
	})

	t.Run("realm scoped missing names the realm", func(t *testing.T) {
		_, err := ResolveUser(ctx, dir, "cordelia@lear.example", acme)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), `the realm "acme" does not contain a user with email`) {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("server wide", func(t *testing.T) {
		user, err := ResolveUser(ctx, dir, "cordelia@lear.example", nil)
		if err != nil {
			t.Fatalf("ResolveUser() error = %v", err)
		}
		if user.RealmID != lear.ID {
			t.Errorf("RealmID = %q, want %q", user.RealmID, lear.ID)
		}
	})

	t.Run("server wide missing", func(t *testing.T) {
		_, err := ResolveUser(ctx, dir, "nobody@nowhere.example", nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "this server does not contain a user with email") {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("server wide ambiguous", func(t *testing.T) {
		_, err := ResolveUser(ctx, dir, "iago@acme.example", nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "multiple users") {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("realm disambiguates shared email", func(t *testing.T) {
		user, err := ResolveUser(ctx, dir, "iago@acme.example", lear)
		if err != nil {
			t.Fatalf("ResolveUser() error = %v", err)
		}
		if user.FullName != "Other Iago" {
			t.Errorf("FullName = %q", user.FullName)
		}
	})
}

func TestResolveUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir, acme, _ := newFakeDirectory()

	t.Run("both flags is a usage error", func(t *testing.T) {
		_, err := ResolveUsers(ctx, dir, "iago@acme.example", true, acme)
		if !IsUsage(err) {
			t.Fatalf("error = %v, want UsageError", err)
		}
		if !strings.Contains(err.Error(), "can't use both") {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("neither flag is a usage error", func(t *testing.T) {
		_, err := ResolveUsers(ctx, dir, "", false, acme)
		if !IsUsage(err) {
			t.Fatalf("error = %v, want UsageError", err)
		}
		if !strings.Contains(err.Error(), "have to pass either") {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("all users requires realm", func(t *testing.T) {
		_, err := ResolveUsers(ctx, dir, "", true, nil)
		if !IsUsage(err) {
			t.Fatalf("error = %v, want UsageError", err)
		}
		if !strings.Contains(err.Error(), "requires a realm") {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("all users in realm", func(t *testing.T) {
		users, err := ResolveUsers(ctx, dir, "", true, acme)
		if err != nil {
			t.Fatalf("ResolveUsers() error = %v", err)
		}
		if len(users) != 2 {
			t.Errorf("len(users) = %d, want 2", len(users))
		}
	})

	t.Run("comma separated emails", func(t *testing.T) {
		users, err := ResolveUsers(ctx, dir, "iago@acme.example, othello@acme.example", false, acme)
		if err != nil {
			t.Fatalf("ResolveUsers() error = %v", err)
		}
		if len(users) != 2 {
			t.Errorf("len(users) = %d, want 2", len(users))
		}
	})

	t.Run("one bad email fails the list", func(t *testing.T) {
		_, err := ResolveUsers(ctx, dir, "iago@acme.example,missing@acme.example", false, acme)
		if err == nil {
			t.Fatal("expected error")
		}
		if IsUsage(err) {
			t.Error("unresolved email should not be a usage error")
		}
	})
}
