package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AndreiTelteu/team-status/internal/model"
	"github.com/AndreiTelteu/team-status/internal/status"
)

// LeaveStore は休暇ハンドラーが必要とするリポジトリインターフェース。
type LeaveStore interface {
	FindByID(ctx context.Context, id string) (*model.LeavePeriod, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*model.LeavePeriod, error)
	Create(ctx context.Context, l *model.LeavePeriod) error
	DeleteByID(ctx context.Context, id string) error
}

// EmployeeFinder は休暇作成時の従業員存在チェックに使うインターフェース。
// repository.EmployeeRepositoryを直接要求せず、最小限のインターフェースとして定義する。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*model.Employee, error)
}

// LeaveHandler は休暇期間管理のHTTPハンドラー。
type LeaveHandler struct {
	store  LeaveStore
	finder EmployeeFinder
}

// NewLeaveHandler はLeaveHandlerを生成する。
func NewLeaveHandler(store LeaveStore, finder EmployeeFinder) *LeaveHandler {
	return &LeaveHandler{store: store, finder: finder}
}

// leaveRequest は休暇期間作成リクエストのボディ。
type leaveRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDay   string `json:"start_day"`
	EndDay     string `json:"end_day"`
	Reason     string `json:"reason"`
}

// leaveResponse は休暇期間のAPIレスポンス。
type leaveResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	StartDay   string `json:"start_day"`
	EndDay     string `json:"end_day"`
	Reason     string `json:"reason"`
	CreatedAt  string `json:"created_at"`
}

func toLeaveResponse(l *model.LeavePeriod) leaveResponse {
	return leaveResponse{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		StartDay:   l.StartDay,
		EndDay:     l.EndDay,
		Reason:     l.Reason,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
}

// ListLeaves は休暇期間一覧を返す。employee_idクエリで絞り込める。
// GET /api/leaves
func (h *LeaveHandler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")

	list, err := h.store.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]leaveResponse, 0, len(list))
	for _, l := range list {
		resp = append(resp, toLeaveResponse(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateLeave は休暇期間を作成する。
// POST /api/leaves
func (h *LeaveHandler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	if req.EmployeeID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("employee_id"))
		return
	}
	if !status.ValidDay(req.StartDay) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDayError(req.StartDay))
		return
	}
	if !status.ValidDay(req.EndDay) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDayError(req.EndDay))
		return
	}
	// 日付キーは辞書順比較で日付順と一致する
	if req.EndDay < req.StartDay {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDayError(req.EndDay))
		return
	}

	e, err := h.finder.FindByID(r.Context(), req.EmployeeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if e == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewEmployeeNotFoundError(req.EmployeeID))
		return
	}

	l := &model.LeavePeriod{
		ID:         uuid.New().String(),
		EmployeeID: req.EmployeeID,
		StartDay:   req.StartDay,
		EndDay:     req.EndDay,
		Reason:     req.Reason,
		CreatedAt:  time.Now(),
	}
	if err := h.store.Create(r.Context(), l); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveResponse(l))
}

// DeleteLeave は休暇期間を削除する。
// DELETE /api/leaves/{id}
func (h *LeaveHandler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	l, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if l == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewLeaveNotFoundError(id))
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
