// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradinghub/backend/internal/auth"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	auth.Observer
	RecordHTTPRequest(statusCode int, duration time.Duration)
	RecordCatalogMutation(entity, action string)
	RecordSessionsSwept(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	sessionExchanges *prometheus.CounterVec
	resolutions      *prometheus.CounterVec
	accessDenials    *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	httpLatency      prometheus.Histogram
	catalogMutations *prometheus.CounterVec
	sessionsSwept    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradinghub_session_exchanges_total",
			Help: "session_id交換の結果別件数",
		}, []string{"result"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradinghub_identity_resolutions_total",
			Help: "リクエスト認証の結果別件数",
		}, []string{"outcome"}),
		accessDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradinghub_access_denials_total",
			Help: "権限判定による拒否の理由別件数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradinghub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradinghub_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		catalogMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradinghub_catalog_mutations_total",
			Help: "カタログ更新のエンティティ・操作別件数",
		}, []string{"entity", "action"}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradinghub_sessions_swept_total",
			Help: "期限切れで無効化したセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.sessionExchanges,
		c.resolutions,
		c.accessDenials,
		c.httpStatus,
		c.httpLatency,
		c.catalogMutations,
		c.sessionsSwept,
	)

	return c
}

// SessionExchanged はセッション交換の結果を記録する。
func (c *Collector) SessionExchanged(result string) {
	c.sessionExchanges.WithLabelValues(result).Inc()
}

// IdentityResolved はリクエスト認証の結果を記録する。
func (c *Collector) IdentityResolved(outcome auth.Outcome) {
	c.resolutions.WithLabelValues(string(outcome)).Inc()
}

// AccessDenied は権限判定による拒否を記録する。
func (c *Collector) AccessDenied(reason string) {
	c.accessDenials.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest はHTTPレスポンスのステータスコードと処理時間を記録する。
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordCatalogMutation はカタログの作成・更新・削除を記録する。
func (c *Collector) RecordCatalogMutation(entity, action string) {
	c.catalogMutations.WithLabelValues(entity, action).Inc()
}

// RecordSessionsSwept は期限切れセッションの無効化件数を記録する。
func (c *Collector) RecordSessionsSwept(count int64) {
	if count > 0 {
		c.sessionsSwept.Add(float64(count))
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
