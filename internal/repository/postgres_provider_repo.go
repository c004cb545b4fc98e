package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/tradinghub/backend/internal/model"
)

const providerColumns = `id, name, win_rate, trades_last_month, signal_types, subscription_price, currency,
	rating, followers, description, risk_level, avg_pips_profit_monthly, verified, affiliate_url,
	created_at, updated_at`

// providerSearchCond は名前またはシグナル種別に対する部分一致条件。
const providerSearchCond = `(name ILIKE $%[1]d OR EXISTS (SELECT 1 FROM unnest(signal_types) st WHERE st ILIKE $%[1]d))`

// PostgresProviderRepo はPostgreSQLを使用したシグナルプロバイダーリポジトリ。
type PostgresProviderRepo struct {
	db *sql.DB
}

// NewPostgresProviderRepo はPostgresProviderRepoを生成する。
func NewPostgresProviderRepo(db *sql.DB) *PostgresProviderRepo {
	return &PostgresProviderRepo{db: db}
}

func scanProvider(row rowScanner) (*model.Provider, error) {
	p := &model.Provider{}
	err := row.Scan(
		&p.ID, &p.Name, &p.WinRate, &p.TradesLastMonth, pq.Array(&p.SignalTypes),
		&p.SubscriptionPrice, &p.Currency, &p.Rating, &p.Followers, &p.Description,
		&p.RiskLevel, &p.AvgPipsProfitMonthly, &p.Verified, &p.AffiliateURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.SignalTypes == nil {
		p.SignalTypes = []string{}
	}
	return p, nil
}

func (r *PostgresProviderRepo) query(ctx context.Context, query string, args ...any) ([]*model.Provider, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("プロバイダーの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	providers := []*model.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("プロバイダーのスキャンに失敗しました: %w", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("プロバイダーの取得に失敗しました: %w", err)
	}
	return providers, nil
}

// List は絞り込み条件に一致するプロバイダーを評価の高い順に返す。
func (r *PostgresProviderRepo) List(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, int, error) {
	w := &whereBuilder{}
	if filter.SignalType != "" {
		w.add(`$%[1]d = ANY(signal_types)`, filter.SignalType)
	}
	if filter.RiskLevel != "" {
		w.add(`risk_level ILIKE $%[1]d`, containsPattern(filter.RiskLevel))
	}
	if filter.MinPrice != nil {
		w.add(`subscription_price >= $%[1]d`, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		w.add(`subscription_price <= $%[1]d`, *filter.MaxPrice)
	}
	if filter.Search != "" {
		w.add(providerSearchCond, containsPattern(filter.Search))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM providers`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("プロバイダー件数の取得に失敗しました: %w", err)
	}

	page, args := w.paginate(filter.Limit, filter.Skip)
	providers, err := r.query(ctx,
		`SELECT `+providerColumns+` FROM providers`+w.clause()+` ORDER BY rating DESC, name ASC`+page,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	return providers, total, nil
}

// Search は名前またはシグナル種別の部分一致でプロバイダーを検索する。
func (r *PostgresProviderRepo) Search(ctx context.Context, query string, limit int) ([]*model.Provider, error) {
	w := &whereBuilder{}
	w.add(providerSearchCond, containsPattern(query))
	page, args := w.paginate(limit, 0)
	return r.query(ctx,
		`SELECT `+providerColumns+` FROM providers`+w.clause()+` ORDER BY rating DESC, name ASC`+page,
		args...,
	)
}

// FindByID は指定IDのプロバイダーを取得する。見つからない場合はnilを返す。
func (r *PostgresProviderRepo) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	p, err := scanProvider(r.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロバイダーの取得に失敗しました: %w", err)
	}
	return p, nil
}

// Create はプロバイダーを作成する。
func (r *PostgresProviderRepo) Create(ctx context.Context, p *model.Provider) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO providers (id, name, win_rate, trades_last_month, signal_types, subscription_price,
		   currency, rating, followers, description, risk_level, avg_pips_profit_monthly, verified,
		   affiliate_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.ID, p.Name, p.WinRate, p.TradesLastMonth, pq.Array(p.SignalTypes), p.SubscriptionPrice,
		p.Currency, p.Rating, p.Followers, p.Description, p.RiskLevel, p.AvgPipsProfitMonthly, p.Verified,
		p.AffiliateURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロバイダーの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はプロバイダーの全フィールドを上書きする。
func (r *PostgresProviderRepo) Update(ctx context.Context, p *model.Provider) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE providers
		 SET name = $2, win_rate = $3, trades_last_month = $4, signal_types = $5, subscription_price = $6,
		     currency = $7, rating = $8, followers = $9, description = $10, risk_level = $11,
		     avg_pips_profit_monthly = $12, verified = $13, affiliate_url = $14, updated_at = $15
		 WHERE id = $1`,
		p.ID, p.Name, p.WinRate, p.TradesLastMonth, pq.Array(p.SignalTypes), p.SubscriptionPrice,
		p.Currency, p.Rating, p.Followers, p.Description, p.RiskLevel,
		p.AvgPipsProfitMonthly, p.Verified, p.AffiliateURL, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロバイダーの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのプロバイダーを削除する。
func (r *PostgresProviderRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("プロバイダーの削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("影響行数の取得に失敗しました: %w", err)
	}
	return n > 0, nil
}

// Count はプロバイダーの全件数を返す。
func (r *PostgresProviderRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM providers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("プロバイダー件数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ ProviderRepository = (*PostgresProviderRepo)(nil)
