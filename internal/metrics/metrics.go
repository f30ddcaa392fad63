// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordContentView(contentKind string)
	RecordAIGeneration(status string)
	RecordAIImageFailure()
	RecordUpload(status string)
	RecordFeedImport(itemCount int)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	contentViews  *prometheus.CounterVec
	aiGeneration  *prometheus.CounterVec
	aiImageFail   prometheus.Counter
	uploads       *prometheus.CounterVec
	feedImports   prometheus.Counter
	importedItems prometheus.Counter
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		contentViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_content_views_total",
			Help: "コンテンツ種別ごとの閲覧数",
		}, []string{"kind"}),
		aiGeneration: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_ai_generation_total",
			Help: "AI記事生成の結果別合計数",
		}, []string{"status"}),
		aiImageFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_ai_image_fail_total",
			Help: "AI画像生成失敗の合計数",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_uploads_total",
			Help: "ファイルアップロードの結果別合計数",
		}, []string{"status"}),
		feedImports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_feed_imports_total",
			Help: "フィードインポート実行の合計数",
		}),
		importedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_feed_imported_items_total",
			Help: "フィードインポートで作成された下書きの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.contentViews,
		c.aiGeneration,
		c.aiImageFail,
		c.uploads,
		c.feedImports,
		c.importedItems,
		c.httpStatus,
	)

	return c
}

// RecordContentView はコンテンツの閲覧を記録する。
func (c *Collector) RecordContentView(contentKind string) {
	c.contentViews.WithLabelValues(contentKind).Inc()
}

// RecordAIGeneration はAI記事生成の結果を記録する。statusはsuccessまたはerror。
func (c *Collector) RecordAIGeneration(status string) {
	c.aiGeneration.WithLabelValues(status).Inc()
}

// RecordAIImageFailure はAI画像生成の失敗を記録する。
func (c *Collector) RecordAIImageFailure() {
	c.aiImageFail.Inc()
}

// RecordUpload はファイルアップロードの結果を記録する。statusはsuccessまたはrejected。
func (c *Collector) RecordUpload(status string) {
	c.uploads.WithLabelValues(status).Inc()
}

// RecordFeedImport はフィードインポートの実行と作成件数を記録する。
func (c *Collector) RecordFeedImport(itemCount int) {
	c.feedImports.Inc()
	c.importedItems.Add(float64(itemCount))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。テストで使用する。
type NopCollector struct{}

func (NopCollector) RecordContentView(string)  {}
func (NopCollector) RecordAIGeneration(string) {}
func (NopCollector) RecordAIImageFailure()     {}
func (NopCollector) RecordUpload(string)       {}
func (NopCollector) RecordFeedImport(int)      {}
func (NopCollector) RecordHTTPStatus(int)      {}

var _ MetricsCollector = (*Collector)(nil)
var _ MetricsCollector = NopCollector{}
