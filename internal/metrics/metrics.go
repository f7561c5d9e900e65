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
// ハンドラーとミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
	RecordPostOperation(op string)
	RecordLoginSuccess()
	RecordLoginFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
	postOps         *prometheus.CounterVec
	loginSuccess    prometheus.Counter
	loginFailure    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blogman_request_duration_seconds",
			Help:    "リクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		postOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_post_operations_total",
			Help: "記事操作（create/update/remove）の合計数",
		}, []string{"op"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogman_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogman_login_failure_total",
			Help: "ログイン失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.postOps,
		c.loginSuccess,
		c.loginFailure,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordPostOperation は記事操作を記録する。opはcreate、update、removeのいずれか。
func (c *Collector) RecordPostOperation(op string) {
	c.postOps.WithLabelValues(op).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailure.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないコレクター。テストで使用する。
type NopCollector struct{}

func (NopCollector) RecordHTTPStatus(int)                 {}
func (NopCollector) RecordRequestDuration(time.Duration)  {}
func (NopCollector) RecordPostOperation(string)           {}
func (NopCollector) RecordLoginSuccess()                  {}
func (NopCollector) RecordLoginFailure()                  {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
