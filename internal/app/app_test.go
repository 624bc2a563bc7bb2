package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"didactax/pkg/domain"
	"didactax/pkg/store"
)

const testPassword = "Str0ng#Password!"

func newTestApp(t *testing.T) *App {
	t.Helper()
	s, err := store.NewGormStore(filepath.Join(t.TempDir(), "didactax.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	a, err := New(Config{
		Store:             s,
		Sessions:          store.NewMemorySessionStore(),
		DashboardPageSize: 5,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func registerTestUser(t *testing.T, a *App, email string) domain.User {
	t.Helper()
	user, _, err := a.Register(email, testPassword, "Tester")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	a := newTestApp(t)

	user, token, err := a.Register("New@Example.COM", testPassword, "  Ada  ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "new@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Name != "Ada" {
		t.Fatalf("name not trimmed: %q", user.Name)
	}
	if user.Streak != 0 {
		t.Fatalf("fresh account should start with streak 0, got %d", user.Streak)
	}
	if got, ok := a.UserFromToken(token); !ok || got.ID != user.ID {
		t.Fatalf("register token does not resolve: ok=%v", ok)
	}

	if _, _, err := a.Register("new@example.com", testPassword, "Dup"); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
	if _, _, err := a.Login("new@example.com", "Wrong#Password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := a.Login("nobody@example.com", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	a := newTestApp(t)
	if _, _, err := a.Register("weak@example.com", "short1!A", "W"); err == nil {
		t.Fatalf("expected weak password rejection")
	}
	if _, _, err := a.Register("", testPassword, "W"); !errors.Is(err, ErrEmailAndPasswordRequired) {
		t.Fatalf("expected missing email error, got %v", err)
	}
}

func TestLoginStreak(t *testing.T) {
	a := newTestApp(t)
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return day1 }
	registerTestUser(t, a, "streak@example.com")

	// First login on the registration day keeps streak, then counts up
	// one per consecutive day.
	login := func(at time.Time) domain.User {
		a.now = func() time.Time { return at }
		user, _, err := a.Login("streak@example.com", testPassword)
		if err != nil {
			t.Fatalf("login at %v: %v", at, err)
		}
		return user
	}

	if got := login(day1.Add(4 * time.Hour)); got.Streak != 0 {
		t.Fatalf("same-day login changed streak: %d", got.Streak)
	}
	if got := login(day1.AddDate(0, 0, 1)); got.Streak != 1 {
		t.Fatalf("next-day login should give streak 1, got %d", got.Streak)
	}
	if got := login(day1.AddDate(0, 0, 2)); got.Streak != 2 {
		t.Fatalf("consecutive login should give streak 2, got %d", got.Streak)
	}
	// Late-evening to early-morning still counts as consecutive days.
	if got := login(day1.AddDate(0, 0, 3).Add(-9*time.Hour + 30*time.Minute)); got.Streak != 3 {
		t.Fatalf("calendar-day boundary login should give streak 3, got %d", got.Streak)
	}
	if got := login(day1.AddDate(0, 0, 7)); got.Streak != 1 {
		t.Fatalf("login after a gap should reset streak to 1, got %d", got.Streak)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	a := newTestApp(t)
	_, token, err := a.Register("out@example.com", testPassword, "Out")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.Logout(token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := a.UserFromToken(token); ok {
		t.Fatalf("token still valid after logout")
	}
}

func TestCreateWorkDefaults(t *testing.T) {
	a := newTestApp(t)
	user := registerTestUser(t, a, "w@example.com")

	single, err := a.CreateWork(user.ID, domain.TypeSingle, "Essay", 42)
	if err != nil {
		t.Fatalf("create single: %v", err)
	}
	if single.PageCount != 1 {
		t.Fatalf("single works always have one page, got %d", single.PageCount)
	}

	book, err := a.CreateWork(user.ID, domain.TypeBook, "Novel", 0)
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	if book.PageCount != 10 {
		t.Fatalf("book without page count should default to 10, got %d", book.PageCount)
	}

	if _, err := a.CreateWork(user.ID, "poster", "Nope", 0); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}

func TestListWorksSortsAndPaginates(t *testing.T) {
	a := newTestApp(t)
	user := registerTestUser(t, a, "dash@example.com")

	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	var newest uint
	for i := 0; i < 7; i++ {
		a.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		work, err := a.CreateWork(user.ID, domain.TypeSingle, "W", 0)
		if err != nil {
			t.Fatalf("create work: %v", err)
		}
		newest = work.ID
	}

	page, err := a.ListWorks(user.ID, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalPages != 2 {
		t.Fatalf("expected 2 dashboard pages for 7 works, got %d", page.TotalPages)
	}
	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items on page 1, got %d", len(page.Items))
	}
	if page.Items[0].ID != newest {
		t.Fatalf("most recently touched work should come first")
	}

	second, err := a.ListWorks(user.ID, 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(second.Items))
	}

	past, err := a.ListWorks(user.ID, 9)
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(past.Items) != 0 || past.TotalPages != 2 {
		t.Fatalf("past-end page should be empty with total intact, got %+v", past)
	}
}

func TestWorkOwnership(t *testing.T) {
	a := newTestApp(t)
	owner := registerTestUser(t, a, "owner@example.com")
	other := registerTestUser(t, a, "other@example.com")

	work, err := a.CreateWork(owner.ID, domain.TypeSingle, "Private", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := a.WorkForUser(other.ID, work.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := a.WorkForUser(owner.ID, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateWorkPartial(t *testing.T) {
	a := newTestApp(t)
	user := registerTestUser(t, a, "up@example.com")
	work, err := a.CreateWork(user.ID, domain.TypeSingle, "Before", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	content := "body text"
	updated, err := a.UpdateWork(user.ID, work.ID, nil, &content, map[string]any{"tags": []any{"draft"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Before" || updated.Content != "body text" {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}

	empty := ""
	if _, err := a.UpdateWork(user.ID, work.ID, &empty, nil, nil); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}
}

func TestSaveWorkTouchesTimestamp(t *testing.T) {
	a := newTestApp(t)
	user := registerTestUser(t, a, "save@example.com")

	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return created }
	work, err := a.CreateWork(user.ID, domain.TypeSingle, "Auto", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := created.Add(90 * time.Minute)
	a.now = func() time.Time { return later }
	if err := a.SaveWork(user.ID, work.ID); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err := a.WorkForUser(user.ID, work.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !saved.UpdatedAt.After(work.UpdatedAt) {
		t.Fatalf("save did not touch updatedAt: %v then %v", work.UpdatedAt, saved.UpdatedAt)
	}
	// Saving again with nothing changed is still fine.
	if err := a.SaveWork(user.ID, work.ID); err != nil {
		t.Fatalf("repeat save: %v", err)
	}
}

func TestDeleteWorkIsIdempotent(t *testing.T) {
	a := newTestApp(t)
	user := registerTestUser(t, a, "del@example.com")
	work, err := a.CreateWork(user.ID, domain.TypeSingle, "Gone", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := a.DeleteWork(user.ID, work.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := a.DeleteWork(user.ID, work.ID); err != nil {
		t.Fatalf("deleting an absent work should be a no-op, got %v", err)
	}
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	a := newTestApp(t)
	user := registerTestUser(t, a, "set@example.com")

	settings, err := a.SettingsForUser(user.ID)
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if settings.Theme != "dark" || settings.FontSize != 16 || !settings.AutoSave || !settings.AutoCorrect {
		t.Fatalf("unexpected defaults: %+v", settings)
	}

	settings.Theme = "light"
	settings.AutoCorrect = false
	if _, err := a.UpdateSettings(user.ID, settings); err != nil {
		t.Fatalf("update: %v", err)
	}
	saved, err := a.SettingsForUser(user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if saved.Theme != "light" || saved.AutoCorrect {
		t.Fatalf("settings not persisted: %+v", saved)
	}
}
