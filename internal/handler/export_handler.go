package handler

import (
	"log/slog"
	"net/http"

	"github.com/AndreiTelteu/team-status/internal/export"
	"github.com/AndreiTelteu/team-status/internal/model"
	"github.com/AndreiTelteu/team-status/internal/status"
)

// StatusSnapshotter はエクスポートハンドラーが必要とするキャッシュインターフェース。
type StatusSnapshotter interface {
	Snapshot() model.StatusMap
}

// ExportHandler はステータスのCSVエクスポートを処理するHTTPハンドラー。
type ExportHandler struct {
	cache  StatusSnapshotter
	logger *slog.Logger
}

// NewExportHandler はExportHandlerを生成する。
func NewExportHandler(cache StatusSnapshotter, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{cache: cache, logger: logger}
}

// ExportStatusCSV はライブキャッシュのスナップショットをCSVとして返す。
// from/toクエリパラメータ（YYYY-MM-DD）で日付範囲を絞り込める。
// GET /api/export/statuses.csv
func (h *ExportHandler) ExportStatusCSV(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	if from != "" && !status.ValidDay(from) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDayError(from))
		return
	}
	if to != "" && !status.ValidDay(to) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDayError(to))
		return
	}

	snapshot := h.cache.Snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="statuses.csv"`)
	if err := export.WriteStatusCSV(w, snapshot, from, to); err != nil {
		// ヘッダー送信後はステータスコードを変えられないためログのみ
		h.logger.Error("csv_export_failed", slog.String("error", err.Error()))
	}
}
