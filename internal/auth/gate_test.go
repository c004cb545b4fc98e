package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tradinghub/backend/internal/model"
)

func newTestGate(repo *memUserRepo, obs Observer) *Gate {
	return NewGate(newTestResolver(repo, obs), obs)
}

func TestGate_RequireAuthenticated(t *testing.T) {
	repo := newMemUserRepo()
	seedSessionUser(repo, "tok", testNow.Add(time.Hour))
	obs := &recordingObserver{}
	gate := newTestGate(repo, obs)

	user, err := gate.RequireAuthenticated(context.Background(), requestWith("tok", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user.ID = %q, want u1", user.ID)
	}

	_, err = gate.RequireAuthenticated(context.Background(), requestWith("", ""))
	if !errors.Is(err, ErrAuthenticationRequired) {
		t.Errorf("err = %v, want ErrAuthenticationRequired", err)
	}
	if len(obs.denials) != 1 || obs.denials[0] != DenyUnauthenticated {
		t.Errorf("denials = %v", obs.denials)
	}
}

func TestGate_RequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		isAdmin bool
		cookie  string
		wantErr error
	}{
		{"admin", true, "tok", nil},
		{"non-admin", false, "tok", ErrInsufficientPrivilege},
		{"unauthenticated", true, "", ErrAuthenticationRequired},
		{"unknown token", true, "nope", ErrAuthenticationRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemUserRepo()
			repo.put(&model.User{
				ID: "u1", Email: "a@x.com", IsAdmin: tt.isAdmin,
				SessionToken: strPtr("tok"), SessionExpires: timePtr(testNow.Add(time.Hour)),
			})
			gate := newTestGate(repo, nil)

			user, err := gate.RequireAdmin(context.Background(), requestWith(tt.cookie, ""))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (user == nil || !user.IsAdmin) {
				t.Errorf("expected admin user, got %+v", user)
			}
			if tt.wantErr != nil && user != nil {
				t.Errorf("expected nil user, got %+v", user)
			}
		})
	}
}

// 新規作成されたユーザーは有効なセッションを持っていても管理者権限チェックに失敗すること
func TestGate_RequireAdmin_FreshlyReconciledUserIsNeverAdmin(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(nil, repo, nil)
	if _, err := svc.Reconcile(context.Background(), &model.SessionData{
		ID: "u9", Email: "new@x.com", Name: "New", SessionToken: "fresh",
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	obs := &recordingObserver{}
	gate := newTestGate(repo, obs)

	if _, err := gate.RequireAuthenticated(context.Background(), requestWith("fresh", "")); err != nil {
		t.Fatalf("fresh session should authenticate: %v", err)
	}
	_, err := gate.RequireAdmin(context.Background(), requestWith("fresh", ""))
	if !errors.Is(err, ErrInsufficientPrivilege) {
		t.Errorf("err = %v, want ErrInsufficientPrivilege", err)
	}
	if len(obs.denials) != 1 || obs.denials[0] != DenyNotAdmin {
		t.Errorf("denials = %v", obs.denials)
	}
}

// コンテキストに格納済みの認証結果があればストレージを参照しないこと
func TestGate_UsesResolutionFromContext(t *testing.T) {
	repo := newMemUserRepo()
	repo.lookupErr = errors.New("must not be called")
	gate := newTestGate(repo, nil)

	admin := &model.User{ID: "a1", IsAdmin: true}
	ctx := WithResolution(context.Background(), Resolution{User: admin, Outcome: OutcomeAuthenticated, Source: SourceCookie})

	user, err := gate.RequireAdmin(ctx, requestWith("whatever", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != admin {
		t.Errorf("user = %+v, want context user", user)
	}
}

// ストレージ障害時は401として扱うこと
func TestGate_LookupFailure_IsUnauthenticated(t *testing.T) {
	repo := newMemUserRepo()
	repo.lookupErr = errors.New("db down")
	gate := newTestGate(repo, nil)

	_, err := gate.RequireAdmin(context.Background(), requestWith("tok", ""))
	if !errors.Is(err, ErrAuthenticationRequired) {
		t.Errorf("err = %v, want ErrAuthenticationRequired", err)
	}
}
