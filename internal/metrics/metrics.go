// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// 更新パイプラインと接続ライフサイクルの両方のメトリクスインターフェースを満たす。
type Collector struct {
	updatesAccepted prometheus.Counter
	updatesRejected prometheus.Counter
	persistFailures prometheus.Counter
	broadcasts      prometheus.Counter
	connections     prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		updatesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamstatus_updates_accepted_total",
			Help: "受理されたステータス更新の合計数",
		}),
		updatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamstatus_updates_rejected_total",
			Help: "検証エラーで拒否されたステータス更新の合計数",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamstatus_persist_failures_total",
			Help: "ストア書き込み失敗の合計数（キャッシュは進んだまま）",
		}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamstatus_broadcasts_total",
			Help: "ブロードキャストトピックへの発行回数",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "teamstatus_ws_connections",
			Help: "現在開いているWebSocket接続数",
		}),
	}

	reg.MustRegister(
		c.updatesAccepted,
		c.updatesRejected,
		c.persistFailures,
		c.broadcasts,
		c.connections,
	)

	return c
}

// RecordUpdateAccepted は更新の受理を記録する。
func (c *Collector) RecordUpdateAccepted() {
	c.updatesAccepted.Inc()
}

// RecordUpdateRejected は更新の拒否を記録する。
func (c *Collector) RecordUpdateRejected() {
	c.updatesRejected.Inc()
}

// RecordPersistFailure はストア書き込み失敗を記録する。
func (c *Collector) RecordPersistFailure() {
	c.persistFailures.Inc()
}

// RecordBroadcast はブロードキャスト発行を記録する。
func (c *Collector) RecordBroadcast() {
	c.broadcasts.Inc()
}

// RecordConnectionOpened は接続の開始を記録する。
func (c *Collector) RecordConnectionOpened() {
	c.connections.Inc()
}

// RecordConnectionClosed は接続の終了を記録する。
func (c *Collector) RecordConnectionClosed() {
	c.connections.Dec()
}

// Handler はPrometheusの/metricsエンドポイントハンドラを返す。
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
