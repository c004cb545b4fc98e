package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/tradinghub/backend/internal/model"
)

const brokerColumns = `id, name, account_types, min_deposit, max_leverage, spreads_from, currency, bonus,
	rating, regulation, instruments, platforms_supported, withdrawal_time, customer_support,
	verified, affiliate_url, created_at, updated_at`

const brokerSearchCond = `(name ILIKE $%[1]d OR EXISTS (SELECT 1 FROM unnest(instruments) i WHERE i ILIKE $%[1]d))`

// PostgresBrokerRepo はPostgreSQLを使用したブローカーリポジトリ。
type PostgresBrokerRepo struct {
	db *sql.DB
}

// NewPostgresBrokerRepo はPostgresBrokerRepoを生成する。
func NewPostgresBrokerRepo(db *sql.DB) *PostgresBrokerRepo {
	return &PostgresBrokerRepo{db: db}
}

func scanBroker(row rowScanner) (*model.Broker, error) {
	b := &model.Broker{}
	var bonus sql.NullString
	err := row.Scan(
		&b.ID, &b.Name, pq.Array(&b.AccountTypes), &b.MinDeposit, &b.MaxLeverage, &b.SpreadsFrom,
		&b.Currency, &bonus, &b.Rating, pq.Array(&b.Regulation), pq.Array(&b.Instruments),
		pq.Array(&b.PlatformsSupported), &b.WithdrawalTime, &b.CustomerSupport,
		&b.Verified, &b.AffiliateURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Bonus = nullStringPtr(bonus)
	for _, arr := range []*[]string{&b.AccountTypes, &b.Regulation, &b.Instruments, &b.PlatformsSupported} {
		if *arr == nil {
			*arr = []string{}
		}
	}
	return b, nil
}

func (r *PostgresBrokerRepo) query(ctx context.Context, query string, args ...any) ([]*model.Broker, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ブローカーの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	brokers := []*model.Broker{}
	for rows.Next() {
		b, err := scanBroker(rows)
		if err != nil {
			return nil, fmt.Errorf("ブローカーのスキャンに失敗しました: %w", err)
		}
		brokers = append(brokers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ブローカーの取得に失敗しました: %w", err)
	}
	return brokers, nil
}

// List は絞り込み条件に一致するブローカーを評価の高い順に返す。
func (r *PostgresBrokerRepo) List(ctx context.Context, filter model.BrokerFilter) ([]*model.Broker, int, error) {
	w := &whereBuilder{}
	if filter.InstrumentType != "" {
		w.add(`$%[1]d = ANY(instruments)`, filter.InstrumentType)
	}
	if filter.MaxMinDeposit != nil {
		w.add(`min_deposit <= $%[1]d`, *filter.MaxMinDeposit)
	}
	if filter.Regulation != "" {
		w.add(`$%[1]d = ANY(regulation)`, filter.Regulation)
	}
	if filter.Search != "" {
		w.add(brokerSearchCond, containsPattern(filter.Search))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brokers`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ブローカー件数の取得に失敗しました: %w", err)
	}

	page, args := w.paginate(filter.Limit, filter.Skip)
	brokers, err := r.query(ctx,
		`SELECT `+brokerColumns+` FROM brokers`+w.clause()+` ORDER BY rating DESC, name ASC`+page,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	return brokers, total, nil
}

// Search は名前または取扱銘柄の部分一致でブローカーを検索する。
func (r *PostgresBrokerRepo) Search(ctx context.Context, query string, limit int) ([]*model.Broker, error) {
	w := &whereBuilder{}
	w.add(brokerSearchCond, containsPattern(query))
	page, args := w.paginate(limit, 0)
	return r.query(ctx,
		`SELECT `+brokerColumns+` FROM brokers`+w.clause()+` ORDER BY rating DESC, name ASC`+page,
		args...,
	)
}

// FindByID は指定IDのブローカーを取得する。見つからない場合はnilを返す。
func (r *PostgresBrokerRepo) FindByID(ctx context.Context, id string) (*model.Broker, error) {
	b, err := scanBroker(r.db.QueryRowContext(ctx,
		`SELECT `+brokerColumns+` FROM brokers WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ブローカーの取得に失敗しました: %w", err)
	}
	return b, nil
}

// Create はブローカーを作成する。
func (r *PostgresBrokerRepo) Create(ctx context.Context, b *model.Broker) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO brokers (id, name, account_types, min_deposit, max_leverage, spreads_from, currency,
		   bonus, rating, regulation, instruments, platforms_supported, withdrawal_time, customer_support,
		   verified, affiliate_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		b.ID, b.Name, pq.Array(b.AccountTypes), b.MinDeposit, b.MaxLeverage, b.SpreadsFrom, b.Currency,
		b.Bonus, b.Rating, pq.Array(b.Regulation), pq.Array(b.Instruments), pq.Array(b.PlatformsSupported),
		b.WithdrawalTime, b.CustomerSupport, b.Verified, b.AffiliateURL, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ブローカーの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はブローカーの全フィールドを上書きする。
func (r *PostgresBrokerRepo) Update(ctx context.Context, b *model.Broker) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE brokers
		 SET name = $2, account_types = $3, min_deposit = $4, max_leverage = $5, spreads_from = $6,
		     currency = $7, bonus = $8, rating = $9, regulation = $10, instruments = $11,
		     platforms_supported = $12, withdrawal_time = $13, customer_support = $14,
		     verified = $15, affiliate_url = $16, updated_at = $17
		 WHERE id = $1`,
		b.ID, b.Name, pq.Array(b.AccountTypes), b.MinDeposit, b.MaxLeverage, b.SpreadsFrom,
		b.Currency, b.Bonus, b.Rating, pq.Array(b.Regulation), pq.Array(b.Instruments),
		pq.Array(b.PlatformsSupported), b.WithdrawalTime, b.CustomerSupport,
		b.Verified, b.AffiliateURL, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ブローカーの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのブローカーを削除する。
func (r *PostgresBrokerRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM brokers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("ブローカーの削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("影響行数の取得に失敗しました: %w", err)
	}
	return n > 0, nil
}

// Count はブローカーの全件数を返す。
func (r *PostgresBrokerRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brokers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ブローカー件数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ BrokerRepository = (*PostgresBrokerRepo)(nil)
