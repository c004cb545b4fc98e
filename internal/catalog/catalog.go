// Package catalog はシグナルプロバイダー、ブローカー、推薦文のドメインロジックを提供する。
//
// 入力値の検証、自由記述テキストのサニタイズ、アフィリエイトURLの検証を行い、
// 永続化はrepositoryパッケージのインターフェースに委譲する。
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradinghub/backend/internal/model"
	"github.com/tradinghub/backend/internal/security"
)

// エンティティ種別（メトリクスのラベル）
const (
	EntityProvider    = "provider"
	EntityBroker      = "broker"
	EntityTestimonial = "testimonial"
)

// 変更操作の種別（メトリクスのラベル）
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
)

// 一覧取得のページング既定値と上限
const (
	DefaultListLimit   = 50
	MaxListLimit       = 100
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

// DefaultCurrency は通貨未指定時の既定値。
const DefaultCurrency = "USD"

// MutationRecorder はカタログ変更操作を記録するインターフェース。
type MutationRecorder interface {
	RecordCatalogMutation(entity, action string)
}

// URLValidator はアフィリエイトURLを検証するインターフェース。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

type nopRecorder struct{}

func (nopRecorder) RecordCatalogMutation(string, string) {}

// Deps はカタログサービス共通の依存。
// Recorderがnilの場合は記録しない。
type Deps struct {
	Sanitizer security.TextSanitizerService
	URLGuard  URLValidator
	Recorder  MutationRecorder
}

// base は各サービスが共有する依存と時刻・ID生成関数。
type base struct {
	sanitizer security.TextSanitizerService
	urlGuard  URLValidator
	recorder  MutationRecorder
	now       func() time.Time
	newID     func() string
}

func newBase(deps Deps) base {
	b := base{
		sanitizer: deps.Sanitizer,
		urlGuard:  deps.URLGuard,
		recorder:  deps.Recorder,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	if b.sanitizer == nil {
		b.sanitizer = security.NewTextSanitizer()
	}
	if b.urlGuard == nil {
		b.urlGuard = security.NewSSRFGuard()
	}
	if b.recorder == nil {
		b.recorder = nopRecorder{}
	}
	return b
}

// field は必須チェック対象のフィールド名と指定有無。
type field struct {
	name    string
	present bool
}

// requireFields は未指定の必須フィールドがあれば検証エラーを返す。
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return model.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// checkRange はvが[lo, hi]の範囲内かを検証する。
func checkRange[T int | float64](name string, v, lo, hi T) error {
	if v < lo || v > hi {
		return model.NewValidationError(fmt.Sprintf("%s must be between %v and %v", name, lo, hi))
	}
	return nil
}

// checkNonNegative はvが0以上かを検証する。
func checkNonNegative[T int | float64](name string, v T) error {
	if v < 0 {
		return model.NewValidationError(fmt.Sprintf("%s must be greater than or equal to 0", name))
	}
	return nil
}

// checkNotBlank はサニタイズ後の文字列が空でないかを検証する。
func checkNotBlank(name, v string) error {
	if v == "" {
		return model.NewValidationError(name + " must not be empty")
	}
	return nil
}

// checkAffiliateURL はアフィリエイトURLが公開ホストへのhttp(s)URLかを検証する。
func (b base) checkAffiliateURL(raw string) error {
	if err := b.urlGuard.ValidateURL(raw); err != nil {
		return model.NewValidationError("affiliateUrl: " + err.Error())
	}
	return nil
}

// NormalizeLimit はlimitを[1, upper]に収める。0以下の場合はdefを返す。
func NormalizeLimit(limit, def, upper int) int {
	if limit <= 0 {
		return def
	}
	if limit > upper {
		return upper
	}
	return limit
}
