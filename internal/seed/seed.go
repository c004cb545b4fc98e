// Package seed は初期カタログデータの投入を提供する。
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tradinghub/backend/internal/model"
	"github.com/tradinghub/backend/internal/repository"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog は投入するカタログデータ。
type Catalog struct {
	Providers    []model.Provider    `yaml:"providers"`
	Brokers      []model.Broker      `yaml:"brokers"`
	Testimonials []model.Testimonial `yaml:"testimonials"`
}

// Result はテーブルごとの投入件数。空でなかったテーブルは0になる。
type Result struct {
	Providers    int
	Brokers      int
	Testimonials int
}

// Parse はYAML形式のカタログを解析する。
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("カタログの解析に失敗しました: %w", err)
	}
	return &c, nil
}

// DefaultCatalog は埋め込みの初期カタログを返す。
func DefaultCatalog() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Seeder はテーブルが空の場合のみカタログを投入する。
type Seeder struct {
	providers    repository.ProviderRepository
	brokers      repository.BrokerRepository
	testimonials repository.TestimonialRepository
	now          func() time.Time
}

// NewSeeder はSeederを生成する。
func NewSeeder(
	providers repository.ProviderRepository,
	brokers repository.BrokerRepository,
	testimonials repository.TestimonialRepository,
) *Seeder {
	return &Seeder{
		providers:    providers,
		brokers:      brokers,
		testimonials: testimonials,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Seed はテーブルごとに件数を確認し、空のテーブルにのみカタログを投入する。
func (s *Seeder) Seed(ctx context.Context, c *Catalog) (Result, error) {
	var res Result
	now := s.now()

	n, err := s.providers.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("プロバイダー件数の取得に失敗しました: %w", err)
	}
	if n == 0 {
		for i := range c.Providers {
			p := c.Providers[i]
			p.CreatedAt, p.UpdatedAt = now, now
			if err := s.providers.Create(ctx, &p); err != nil {
				return res, fmt.Errorf("プロバイダーの投入に失敗しました: %w", err)
			}
			res.Providers++
		}
		slog.Info("seeded providers", slog.Int("count", res.Providers))
	}

	n, err = s.brokers.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("ブローカー件数の取得に失敗しました: %w", err)
	}
	if n == 0 {
		for i := range c.Brokers {
			b := c.Brokers[i]
			b.CreatedAt, b.UpdatedAt = now, now
			if err := s.brokers.Create(ctx, &b); err != nil {
				return res, fmt.Errorf("ブローカーの投入に失敗しました: %w", err)
			}
			res.Brokers++
		}
		slog.Info("seeded brokers", slog.Int("count", res.Brokers))
	}

	n, err = s.testimonials.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("推薦文件数の取得に失敗しました: %w", err)
	}
	if n == 0 {
		for i := range c.Testimonials {
			t := c.Testimonials[i]
			t.CreatedAt = now
			if err := s.testimonials.Create(ctx, &t); err != nil {
				return res, fmt.Errorf("推薦文の投入に失敗しました: %w", err)
			}
			res.Testimonials++
		}
		slog.Info("seeded testimonials", slog.Int("count", res.Testimonials))
	}

	return res, nil
}
