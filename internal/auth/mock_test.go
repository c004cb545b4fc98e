package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tradinghub/backend/internal/model"
	"github.com/tradinghub/backend/internal/repository"
)

// --- モック定義 ---

var errDuplicateUserID = errors.New("duplicate key value violates unique constraint \"users_pkey\"")

// memUserRepo はemailをキーにしたインメモリのUserRepository。
// errフィールドを設定すると該当操作が失敗する。
type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.User

	findErr   error
	lookupErr error
	insertErr error
	updateErr error
	clearErr  error

	updateCalls int
	insertCalls int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*model.User)}
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (m *memUserRepo) FindByActiveSessionToken(_ context.Context, token string, now time.Time) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, u := range m.byEmail {
		if u.SessionToken != nil && *u.SessionToken == token &&
			u.SessionExpires != nil && u.SessionExpires.After(now) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Insert(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	// usersの主キー制約と同じくidの重複を拒否する
	for _, u := range m.byEmail {
		if u.ID == user.ID {
			return errDuplicateUserID
		}
	}
	m.byEmail[user.Email] = copyUser(user)
	return nil
}

func (m *memUserRepo) UpdateSessionByEmail(_ context.Context, email string, update model.SessionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil
	}
	token := update.SessionToken
	expires := update.SessionExpires
	lastLogin := update.LastLogin
	u.SessionToken = &token
	u.SessionExpires = &expires
	u.Name = update.Name
	u.Picture = update.Picture
	u.LastLogin = &lastLogin
	return nil
}

func (m *memUserRepo) ClearSession(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	for _, u := range m.byEmail {
		if u.ID == userID {
			u.SessionToken = nil
			u.SessionExpires = nil
		}
	}
	return nil
}

// put はテスト用にユーザーを直接登録する。
func (m *memUserRepo) put(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[u.Email] = copyUser(u)
}

func (m *memUserRepo) get(email string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return copyUser(u)
	}
	return nil
}

var _ repository.UserRepository = (*memUserRepo)(nil)

type mockIdentityProvider struct {
	fetchFn func(ctx context.Context, sessionID string) (*model.SessionData, bool)
	calls   int
}

func (m *mockIdentityProvider) FetchSessionData(ctx context.Context, sessionID string) (*model.SessionData, bool) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, sessionID)
	}
	return nil, false
}

// recordingObserver は記録されたイベントを保持するObserver。
type recordingObserver struct {
	mu        sync.Mutex
	exchanges []string
	outcomes  []Outcome
	denials   []string
}

func (o *recordingObserver) SessionExchanged(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exchanges = append(o.exchanges, result)
}

func (o *recordingObserver) IdentityResolved(outcome Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) AccessDenied(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.denials = append(o.denials, reason)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

// fixedClock は固定時刻を返す時計。
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
