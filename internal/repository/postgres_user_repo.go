package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradinghub/backend/internal/model"
)

const userColumns = `id, email, name, picture, session_token, session_expires, is_admin, created_at, last_login`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// scanUser はusersの1行をmodel.Userに変換する。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var picture, token sql.NullString
	var expires, lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &picture,
		&token, &expires, &user.IsAdmin, &user.CreatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}

	user.Picture = nullStringPtr(picture)
	user.SessionToken = nullStringPtr(token)
	user.SessionExpires = nullTimePtr(expires)
	user.LastLogin = nullTimePtr(lastLogin)
	return user, nil
}

// FindByEmail はemailでユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("emailによるユーザー取得に失敗しました: %w", err)
	}
	return user, nil
}

// FindByActiveSessionToken は有効なセッショントークンを持つユーザーを取得する。
// 期限切れ・不一致の場合はnilを返す。
func (r *PostgresUserRepo) FindByActiveSessionToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE session_token = $1 AND session_expires > $2`,
		token, now,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("セッショントークンによるユーザー取得に失敗しました: %w", err)
	}
	return user, nil
}

// Insert は新規ユーザーを作成する。
func (r *PostgresUserRepo) Insert(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, picture, session_token, session_expires, is_admin, created_at, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Email, user.Name, user.Picture,
		user.SessionToken, user.SessionExpires, user.IsAdmin, user.CreatedAt, user.LastLogin,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateSessionByEmail はセッション関連フィールドを単一のUPDATE文で上書きする。
func (r *PostgresUserRepo) UpdateSessionByEmail(ctx context.Context, email string, update model.SessionUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET session_token = $2, session_expires = $3, name = $4, picture = $5, last_login = $6
		 WHERE email = $1`,
		email, update.SessionToken, update.SessionExpires, update.Name, update.Picture, update.LastLogin,
	)
	if err != nil {
		return fmt.Errorf("セッション情報の更新に失敗しました: %w", err)
	}
	return nil
}

// ClearSession は指定ユーザーのセッションフィールドをNULLにする。
func (r *PostgresUserRepo) ClearSession(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET session_token = NULL, session_expires = NULL WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("セッションの無効化に失敗しました: %w", err)
	}
	return nil
}

// ClearExpiredSessions はnow時点で期限切れのセッションフィールドをNULLにし、件数を返す。
func (r *PostgresUserRepo) ClearExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET session_token = NULL, session_expires = NULL
		 WHERE session_expires IS NOT NULL AND session_expires <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("期限切れセッションの削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("影響行数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
