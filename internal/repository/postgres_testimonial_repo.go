package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tradinghub/backend/internal/model"
)

const testimonialColumns = `id, name, role, avatar, rating, body, location, approved, created_at`

// PostgresTestimonialRepo はPostgreSQLを使用した推薦文リポジトリ。
type PostgresTestimonialRepo struct {
	db *sql.DB
}

// NewPostgresTestimonialRepo はPostgresTestimonialRepoを生成する。
func NewPostgresTestimonialRepo(db *sql.DB) *PostgresTestimonialRepo {
	return &PostgresTestimonialRepo{db: db}
}

func scanTestimonial(row rowScanner) (*model.Testimonial, error) {
	t := &model.Testimonial{}
	err := row.Scan(&t.ID, &t.Name, &t.Role, &t.Avatar, &t.Rating, &t.Text, &t.Location, &t.Approved, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List は推薦文を新しい順に返す。
func (r *PostgresTestimonialRepo) List(ctx context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error) {
	w := &whereBuilder{}
	if filter.Approved != nil {
		w.add(`approved = $%[1]d`, *filter.Approved)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM testimonials`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("推薦文件数の取得に失敗しました: %w", err)
	}

	page, args := w.paginate(filter.Limit, filter.Skip)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials`+w.clause()+` ORDER BY created_at DESC, id ASC`+page,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("推薦文の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	testimonials := []*model.Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("推薦文のスキャンに失敗しました: %w", err)
		}
		testimonials = append(testimonials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("推薦文の取得に失敗しました: %w", err)
	}
	return testimonials, total, nil
}

// FindByID は指定IDの推薦文を取得する。見つからない場合はnilを返す。
func (r *PostgresTestimonialRepo) FindByID(ctx context.Context, id string) (*model.Testimonial, error) {
	t, err := scanTestimonial(r.db.QueryRowContext(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("推薦文の取得に失敗しました: %w", err)
	}
	return t, nil
}

// Create は推薦文を作成する。
func (r *PostgresTestimonialRepo) Create(ctx context.Context, t *model.Testimonial) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO testimonials (id, name, role, avatar, rating, body, location, approved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Name, t.Role, t.Avatar, t.Rating, t.Text, t.Location, t.Approved, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("推薦文の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は推薦文の全フィールドを上書きする。
func (r *PostgresTestimonialRepo) Update(ctx context.Context, t *model.Testimonial) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE testimonials
		 SET name = $2, role = $3, avatar = $4, rating = $5, body = $6, location = $7, approved = $8
		 WHERE id = $1`,
		t.ID, t.Name, t.Role, t.Avatar, t.Rating, t.Text, t.Location, t.Approved,
	)
	if err != nil {
		return fmt.Errorf("推薦文の更新に失敗しました: %w", err)
	}
	return nil
}

// SetApproved は承認状態のみを更新する。
func (r *PostgresTestimonialRepo) SetApproved(ctx context.Context, id string, approved bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE testimonials SET approved = $2 WHERE id = $1`, id, approved)
	if err != nil {
		return false, fmt.Errorf("推薦文の承認状態の更新に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("影響行数の取得に失敗しました: %w", err)
	}
	return n > 0, nil
}

// Delete は指定IDの推薦文を削除する。
func (r *PostgresTestimonialRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("推薦文の削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("影響行数の取得に失敗しました: %w", err)
	}
	return n > 0, nil
}

// Count は推薦文の全件数を返す。
func (r *PostgresTestimonialRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM testimonials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("推薦文件数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ TestimonialRepository = (*PostgresTestimonialRepo)(nil)
