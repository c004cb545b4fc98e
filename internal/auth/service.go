// Package auth はIdPとのセッション交換、リクエスト認証、権限判定を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradinghub/backend/internal/model"
	"github.com/tradinghub/backend/internal/repository"
)

// DefaultSessionMaxAge はセッションのデフォルト有効期間（7日、秒）。
const DefaultSessionMaxAge = 7 * 24 * 60 * 60

// ErrInvalidSessionID はIdPがsession_idに対するアサーションを返さなかったことを示す。
var ErrInvalidSessionID = errors.New("invalid session id")

// セッション交換結果のラベル
const (
	ExchangeCreated        = "created"
	ExchangeRefreshed      = "refreshed"
	ExchangeInvalidSession = "invalid_session"
	ExchangeError          = "error"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service はIdPアサーションとユーザーレコードの突き合わせを行う。
type Service struct {
	idp      IdentityProvider
	userRepo repository.UserRepository
	config   ServiceConfig
	observer Observer
	now      func() time.Time
}

// NewService はServiceを生成する。observerがnilの場合は記録しない。
func NewService(
	idp IdentityProvider,
	userRepo repository.UserRepository,
	config ServiceConfig,
	observer Observer,
) *Service {
	if config.SessionMaxAge <= 0 {
		config.SessionMaxAge = DefaultSessionMaxAge
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Service{
		idp:      idp,
		userRepo: userRepo,
		config:   config,
		observer: observer,
		now:      time.Now,
	}
}

// SessionTTL はセッションの有効期間を返す。
func (s *Service) SessionTTL() time.Duration {
	return time.Duration(s.config.SessionMaxAge) * time.Second
}

// ExchangeSession はsession_idをIdPで検証し、ユーザーレコードに反映する。
// IdPがアサーションを返さない場合はErrInvalidSessionIDを返す。
func (s *Service) ExchangeSession(ctx context.Context, sessionID string) (*model.User, *model.SessionData, error) {
	data, ok := s.idp.FetchSessionData(ctx, sessionID)
	if !ok {
		s.observer.SessionExchanged(ExchangeInvalidSession)
		return nil, nil, ErrInvalidSessionID
	}

	user, created, err := s.reconcile(ctx, data)
	if err != nil {
		s.observer.SessionExchanged(ExchangeError)
		return nil, nil, err
	}

	if created {
		s.observer.SessionExchanged(ExchangeCreated)
	} else {
		s.observer.SessionExchanged(ExchangeRefreshed)
	}
	return user, data, nil
}

// Reconcile はIdPアサーションをemailでユーザーレコードに突き合わせる。
// 既存ユーザーはセッション・表示名・アイコン・最終ログインを上書きし、再取得した値を返す。
// 未登録の場合は管理者権限なしで新規作成する。
func (s *Service) Reconcile(ctx context.Context, data *model.SessionData) (*model.User, error) {
	user, _, err := s.reconcile(ctx, data)
	return user, err
}

func (s *Service) reconcile(ctx context.Context, data *model.SessionData) (*model.User, bool, error) {
	if data == nil {
		return nil, false, fmt.Errorf("session data is required")
	}

	now := s.now()
	expires := now.Add(s.SessionTTL())

	existing, err := s.userRepo.FindByEmail(ctx, data.Email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	if existing != nil {
		update := model.SessionUpdate{
			SessionToken:   data.SessionToken,
			SessionExpires: expires,
			Name:           data.Name,
			Picture:        data.Picture,
			LastLogin:      now,
		}
		if err := s.userRepo.UpdateSessionByEmail(ctx, data.Email, update); err != nil {
			return nil, false, fmt.Errorf("failed to update user session: %w", err)
		}

		refreshed, err := s.userRepo.FindByEmail(ctx, data.Email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to reload user: %w", err)
		}
		if refreshed == nil {
			return nil, false, fmt.Errorf("user disappeared after session update: %s", existing.ID)
		}

		slog.Info("existing user logged in", slog.String("user_id", refreshed.ID))
		return refreshed, false, nil
	}

	token := data.SessionToken
	lastLogin := now
	user := &model.User{
		ID:             data.ID,
		Email:          data.Email,
		Name:           data.Name,
		Picture:        data.Picture,
		SessionToken:   &token,
		SessionExpires: &expires,
		IsAdmin:        false,
		CreatedAt:      now,
		LastLogin:      &lastLogin,
	}
	if err := s.userRepo.Insert(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created", slog.String("user_id", user.ID))
	return user, true, nil
}

// Invalidate は指定ユーザーのセッションを無効化する。ユーザーレコードは残す。
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if err := s.userRepo.ClearSession(ctx, userID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	slog.Info("user logged out", slog.String("user_id", userID))
	return nil
}
