// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/tradinghub/backend/internal/model"
)

// UserRepository はユーザーとセッション状態の永続化インターフェース。
// セッションはusersレコードのフィールドとして保持する。
type UserRepository interface {
	// FindByEmail はemailでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByActiveSessionToken はsession_tokenが一致し、かつ
	// session_expiresがnowより厳密に後のユーザーを取得する。
	// 該当しない場合（不一致・期限切れ）はnilを返す。
	FindByActiveSessionToken(ctx context.Context, token string, now time.Time) (*model.User, error)

	// Insert は新規ユーザーを作成する。
	Insert(ctx context.Context, user *model.User) error

	// UpdateSessionByEmail は既存ユーザーのセッション関連フィールドを上書きする。
	// idとis_adminは変更しない。更新後の値が必要な場合はFindByEmailで再取得すること。
	UpdateSessionByEmail(ctx context.Context, email string, update model.SessionUpdate) error

	// ClearSession は指定ユーザーのsession_tokenとsession_expiresをNULLにする。
	// レコード自体は削除しない。
	ClearSession(ctx context.Context, userID string) error
}

// ProviderRepository はシグナルプロバイダーの永続化インターフェース。
type ProviderRepository interface {
	// List は条件に一致するプロバイダーをページングして返す。totalはページング前の件数。
	List(ctx context.Context, filter model.ProviderFilter) (providers []*model.Provider, total int, err error)
	// Search は名前またはシグナル種別の部分一致で検索する。
	Search(ctx context.Context, query string, limit int) ([]*model.Provider, error)
	// FindByID は指定IDのプロバイダーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Provider, error)
	// Create はプロバイダーを作成する。
	Create(ctx context.Context, provider *model.Provider) error
	// Update はプロバイダーを上書き更新する。
	Update(ctx context.Context, provider *model.Provider) error
	// Delete は指定IDのプロバイダーを削除する。削除対象がない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)
	// Count は全件数を返す。
	Count(ctx context.Context) (int, error)
}

// BrokerRepository はブローカーの永続化インターフェース。
type BrokerRepository interface {
	List(ctx context.Context, filter model.BrokerFilter) (brokers []*model.Broker, total int, err error)
	Search(ctx context.Context, query string, limit int) ([]*model.Broker, error)
	FindByID(ctx context.Context, id string) (*model.Broker, error)
	Create(ctx context.Context, broker *model.Broker) error
	Update(ctx context.Context, broker *model.Broker) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// TestimonialRepository は推薦文の永続化インターフェース。
type TestimonialRepository interface {
	List(ctx context.Context, filter model.TestimonialFilter) (testimonials []*model.Testimonial, total int, err error)
	FindByID(ctx context.Context, id string) (*model.Testimonial, error)
	Create(ctx context.Context, testimonial *model.Testimonial) error
	Update(ctx context.Context, testimonial *model.Testimonial) error
	// SetApproved は承認状態のみを更新する。対象がない場合はfalseを返す。
	SetApproved(ctx context.Context, id string, approved bool) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}
