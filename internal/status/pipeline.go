package status

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AndreiTelteu/team-status/internal/repository"
)

// Sanitizer はステータステキストの無害化インターフェース。
type Sanitizer interface {
	// Sanitize はテキストから危険なマークアップを除去して返す。
	Sanitize(raw string) string
}

// PipelineMetrics はパイプラインが記録するメトリクスのインターフェース。
type PipelineMetrics interface {
	RecordUpdateAccepted()
	RecordUpdateRejected()
	RecordPersistFailure()
}

// Pipeline は受信した更新の検証・キャッシュ反映・永続化を行う。
//
// 永続化に失敗してもキャッシュの反映は取り消さない。タイピング中の
// ライブビューの可用性を厳密な耐久性より優先する設計で、
// キャッシュとストアの乖離はログとメトリクスにのみ現れる。
type Pipeline struct {
	cache     *Cache
	store     repository.StatusRepository
	sanitizer Sanitizer
	metrics   PipelineMetrics
	logger    *slog.Logger
}

// NewPipeline はPipelineを生成する。
// sanitizerとmetricsはnilを許容する（テスト用）。
func NewPipeline(
	cache *Cache,
	store repository.StatusRepository,
	sanitizer Sanitizer,
	metrics PipelineMetrics,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cache:     cache,
		store:     store,
		sanitizer: sanitizer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Apply は1件の更新を適用する。
// trueを返した場合は呼び出し側がブロードキャストしてよい。
// falseは構造的な検証エラーで、キャッシュもストアも変更されていない。
//
// 空白までトリムした結果が空のテキストはトゥームストーンであり、
// キャッシュのエントリとストアの行を削除する。
func (p *Pipeline) Apply(ctx context.Context, employeeID, day, text string) bool {
	if employeeID == "" || day == "" || !ValidDay(day) {
		if p.metrics != nil {
			p.metrics.RecordUpdateRejected()
		}
		return false
	}

	text = p.Normalize(text)

	// 永続化より先にキャッシュを進める。直後のブロードキャストと
	// スナップショットがread-after-writeで最新を見るため。
	var persistErr error
	if text == "" {
		p.cache.Remove(employeeID, day)
		persistErr = p.store.Delete(ctx, employeeID, day)
	} else {
		p.cache.Set(employeeID, day, text)
		persistErr = p.store.Upsert(ctx, employeeID, day, text)
	}

	if persistErr != nil {
		p.logger.Error("status_persist_failed",
			slog.String("employee_id", employeeID),
			slog.String("day", day),
			slog.String("error", persistErr.Error()),
		)
		if p.metrics != nil {
			p.metrics.RecordPersistFailure()
		}
	}

	if p.metrics != nil {
		p.metrics.RecordUpdateAccepted()
	}
	return true
}

// Normalize はテキストをサニタイズしてから前後の空白をトリムする。
// Applyが内部で使うのと同じ正規化で、冪等。ブロードキャストフレームの
// 構築側がキャッシュに入る値と同一のテキストを得るために公開している。
func (p *Pipeline) Normalize(text string) string {
	if p.sanitizer != nil {
		text = p.sanitizer.Sanitize(text)
	}
	return strings.TrimSpace(text)
}

// Cache はパイプラインが所有するライブキャッシュを返す。
// スナップショット送信経路で使用する。
func (p *Pipeline) Cache() *Cache {
	return p.cache
}
