package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"wtrfll/server/internal/session/domain"
	"wtrfll/server/internal/session/repository"
)

func newLifecycle(t *testing.T) (*LifecycleService, *repository.MemoryRepository) {
	t.Helper()
	store := repository.NewMemoryRepository()
	return NewLifecycleService(store), store
}

func TestCreateSession_GeneratesCodeAndDistinctTokens(t *testing.T) {
	svc, _ := newLifecycle(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "Sunday Evening", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if len(created.ShortCode) != 6 {
		t.Errorf("short code %q length = %d, want 6", created.ShortCode, len(created.ShortCode))
	}
	if created.ControllerJoinToken == created.DisplayJoinToken {
		t.Error("controller and display tokens must be distinct")
	}
	if created.Name != "Sunday Evening" {
		t.Errorf("name = %q", created.Name)
	}
	if created.ScheduledAt != nil {
		t.Errorf("scheduledAt = %v, want nil", created.ScheduledAt)
	}
}

func TestCreateSession_BlankNameFallsBackToShortCode(t *testing.T) {
	svc, _ := newLifecycle(t)

	created, err := svc.CreateSession(context.Background(), "   ", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	want := "Session " + created.ShortCode
	if created.Name != want {
		t.Errorf("name = %q, want %q", created.Name, want)
	}
}

func TestCreateSession_NormalizesScheduledAtToUTC(t *testing.T) {
	svc, _ := newLifecycle(t)
	loc := time.FixedZone("UTC+2", 2*3600)
	scheduled := time.Date(2026, 3, 1, 19, 30, 0, 0, loc)

	created, err := svc.CreateSession(context.Background(), "Evening", &scheduled)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if created.ScheduledAt == nil {
		t.Fatal("scheduledAt should be set")
	}
	if created.ScheduledAt.Location() != time.UTC {
		t.Errorf("scheduledAt location = %v, want UTC", created.ScheduledAt.Location())
	}
	if got := created.ScheduledAt.Hour(); got != 17 {
		t.Errorf("scheduledAt hour = %d, want 17 (19:30+02:00 in UTC)", got)
	}
}

func TestCreateSession_ShortCodesUnique(t *testing.T) {
	svc, _ := newLifecycle(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		created, err := svc.CreateSession(ctx, "", nil)
		if err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
		if seen[created.ShortCode] {
			t.Fatalf("short code %q allocated twice", created.ShortCode)
		}
		seen[created.ShortCode] = true
	}
}

func TestJoinSession_UnknownSession(t *testing.T) {
	svc, _ := newLifecycle(t)

	result, err := svc.JoinSession(context.Background(), "3b7f7dc0-0000-0000-0000-000000000000", domain.RoleDisplay, "TOKEN")
	if err != nil {
		t.Fatalf("JoinSession: %v", err)
	}
	if result.Status != JoinNotFound {
		t.Errorf("status = %v, want JoinNotFound", result.Status)
	}
}

func TestJoinSession_TamperedTokenCreatesNoParticipant(t *testing.T) {
	svc, store := newLifecycle(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "Test", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	result, err := svc.JoinSession(ctx, created.ID, domain.RoleDisplay, "WRONG")
	if err != nil {
		t.Fatalf("JoinSession: %v", err)
	}
	if result.Status != JoinInvalidToken {
		t.Errorf("status = %v, want JoinInvalidToken", result.Status)
	}
	if got := len(store.Participants(created.ID)); got != 0 {
		t.Errorf("participants = %d, want 0", got)
	}
}

func TestJoinSession_CrossRoleTokenIsInvalid(t *testing.T) {
	svc, _ := newLifecycle(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "Test", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	// Display token presented for the controller role, and vice versa.
	result, err := svc.JoinSession(ctx, created.ID, domain.RoleController, created.DisplayJoinToken)
	if err != nil {
		t.Fatalf("JoinSession: %v", err)
	}
	if result.Status != JoinInvalidToken {
		t.Errorf("controller join with display token: status = %v, want JoinInvalidToken", result.Status)
	}

	result, err = svc.JoinSession(ctx, created.ID, domain.RoleDisplay, created.ControllerJoinToken)
	if err != nil {
		t.Fatalf("JoinSession: %v", err)
	}
	if result.Status != JoinInvalidToken {
		t.Errorf("display join with controller token: status = %v, want JoinInvalidToken", result.Status)
	}
}

func TestJoinSession_ControllerLockedAfterFirstJoin(t *testing.T) {
	svc, _ := newLifecycle(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "Locked", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	first, err := svc.JoinSession(ctx, created.ID, domain.RoleController, created.ControllerJoinToken)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	if first.Status != JoinSuccess {
		t.Fatalf("first join status = %v, want JoinSuccess", first.Status)
	}

	second, err := svc.JoinSession(ctx, created.ID, domain.RoleController, created.ControllerJoinToken)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if second.Status != JoinControllerLocked {
		t.Fatalf("second join status = %v, want JoinControllerLocked", second.Status)
	}
	if second.Payload == nil || !second.Payload.ControllerLocked {
		t.Fatal("locked payload should be set with ControllerLocked true")
	}
	if second.Payload.ShortCode != created.ShortCode || second.Payload.Name != created.Name {
		t.Errorf("locked payload identity = %q/%q, want %q/%q",
			second.Payload.ShortCode, second.Payload.Name, created.ShortCode, created.Name)
	}
}

func TestJoinSession_ConcurrentControllerJoins_ExactlyOneWins(t *testing.T) {
	svc, _ := newLifecycle(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "Race", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	const attempts = 32
	results := make([]JoinStatus, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.JoinSession(ctx, created.ID, domain.RoleController, created.ControllerJoinToken)
			if err != nil {
				t.Errorf("join %d: %v", i, err)
				return
			}
			results[i] = r.Status
		}(i)
	}
	wg.Wait()

	var wins, locked int
	for _, status := range results {
		switch status {
		case JoinSuccess:
			wins++
		case JoinControllerLocked:
			locked++
		}
	}
	if wins != 1 {
		t.Errorf("controller join wins = %d, want exactly 1", wins)
	}
	if locked != attempts-1 {
		t.Errorf("locked outcomes = %d, want %d", locked, attempts-1)
	}
}

func TestJoinSession_DisplaysUnbounded(t *testing.T) {
	svc, store := newLifecycle(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "Displays", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	for i := 0; i < 5; i++ {
		r, err := svc.JoinSession(ctx, created.ID, domain.RoleDisplay, created.DisplayJoinToken)
		if err != nil {
			t.Fatalf("display join %d: %v", i, err)
		}
		if r.Status != JoinSuccess {
			t.Fatalf("display join %d status = %v", i, r.Status)
		}
	}
	if got := len(store.Participants(created.ID)); got != 5 {
		t.Errorf("participants = %d, want 5", got)
	}
}

func TestValidateJoinToken_DoesNotCreateParticipant(t *testing.T) {
	svc, store := newLifecycle(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "Validate", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	ok, err := svc.ValidateJoinToken(ctx, created.ID, domain.RoleController, created.ControllerJoinToken)
	if err != nil {
		t.Fatalf("ValidateJoinToken: %v", err)
	}
	if !ok {
		t.Error("valid controller token should validate")
	}
	if got := len(store.Participants(created.ID)); got != 0 {
		t.Errorf("participants = %d, want 0 (validation must not join)", got)
	}

	ok, err = svc.ValidateJoinToken(ctx, created.ID, domain.RoleController, created.DisplayJoinToken)
	if err != nil {
		t.Fatalf("ValidateJoinToken: %v", err)
	}
	if ok {
		t.Error("display token must not validate for controller role")
	}

	ok, err = svc.ValidateJoinToken(ctx, "ffffffff-0000-0000-0000-000000000000", domain.RoleDisplay, created.DisplayJoinToken)
	if err != nil {
		t.Fatalf("ValidateJoinToken: %v", err)
	}
	if ok {
		t.Error("unknown session must not validate")
	}
}

func TestUpcomingSessions_WindowAndOrder(t *testing.T) {
	store := repository.NewMemoryRepository()
	lifecycle := NewLifecycleService(store)
	query := NewQueryService(store)
	ctx := context.Background()

	// Ad-hoc session created now.
	recent, err := lifecycle.CreateSession(ctx, "Recent", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	// Scheduled for tomorrow.
	tomorrow := time.Now().UTC().Add(24 * time.Hour)
	scheduled, err := lifecycle.CreateSession(ctx, "Scheduled", &tomorrow)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	// Scheduled far in the past, outside the grace window.
	longAgo := time.Now().UTC().Add(-30 * 24 * time.Hour)
	if _, err := lifecycle.CreateSession(ctx, "Stale", &longAgo); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	list, err := query.UpcomingSessions(ctx)
	if err != nil {
		t.Fatalf("UpcomingSessions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("upcoming = %d sessions, want 2", len(list))
	}
	if list[0].ID != recent.ID || list[1].ID != scheduled.ID {
		ids := []string{list[0].ID, list[1].ID}
		t.Errorf("order = %v, want [%s %s]", strings.Join(ids, ","), recent.ID, scheduled.ID)
	}
	if list[0].ControllerJoinToken == "" || list[0].DisplayJoinToken == "" {
		t.Error("upcoming rows should include join tokens")
	}
}
