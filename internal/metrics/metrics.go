// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method string, statusCode int)
	RecordHTTPDuration(duration time.Duration)
	RecordRateLimitViolation(class string)
	RecordSessionVerification(result string)
	RecordPersonalization(ruleCount int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests       *prometheus.CounterVec
	httpDuration       prometheus.Histogram
	rateLimitViolation *prometheus.CounterVec
	sessionVerify      *prometheus.CounterVec
	personalizeRules   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hondana_http_requests_total",
			Help: "メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "status_code"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hondana_http_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimitViolation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hondana_rate_limit_violations_total",
			Help: "レート制限クラス別の違反数",
		}, []string{"class"}),
		sessionVerify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hondana_session_verifications_total",
			Help: "結果別のセッション検証数",
		}, []string{"result"}),
		personalizeRules: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hondana_personalize_rules_applied_total",
			Help: "適用されたパーソナライズルールの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.rateLimitViolation,
		c.sessionVerify,
		c.personalizeRules,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストをメソッド・ステータスコード別に記録する。
func (c *Collector) RecordHTTPRequest(method string, statusCode int) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPDuration はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordHTTPDuration(duration time.Duration) {
	c.httpDuration.Observe(duration.Seconds())
}

// RecordRateLimitViolation はレート制限違反をクラス別に記録する。
func (c *Collector) RecordRateLimitViolation(class string) {
	c.rateLimitViolation.WithLabelValues(class).Inc()
}

// RecordSessionVerification はセッション検証の結果を記録する。
// resultは "valid"、"invalid"、"error" のいずれか。
func (c *Collector) RecordSessionVerification(result string) {
	c.sessionVerify.WithLabelValues(result).Inc()
}

// RecordPersonalization は適用されたパーソナライズルール数を記録する。
func (c *Collector) RecordPersonalization(ruleCount int) {
	c.personalizeRules.Add(float64(ruleCount))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
