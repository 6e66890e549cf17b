package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// EmployeeStore は従業員ハンドラーが必要とするリポジトリインターフェース。
type EmployeeStore interface {
	FindByID(ctx context.Context, id string) (*model.Employee, error)
	List(ctx context.Context) ([]*model.Employee, error)
	Create(ctx context.Context, e *model.Employee) error
	Update(ctx context.Context, e *model.Employee) error
	DeleteByID(ctx context.Context, id string) error
}

// EmployeeHandler は従業員管理のHTTPハンドラー。
type EmployeeHandler struct {
	store EmployeeStore
}

// NewEmployeeHandler はEmployeeHandlerを生成する。
func NewEmployeeHandler(store EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{store: store}
}

// employeeRequest は従業員作成・更新リクエストのボディ。
type employeeRequest struct {
	Name string `json:"name"`
}

// employeeResponse は従業員情報のAPIレスポンス。
type employeeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toEmployeeResponse(e *model.Employee) employeeResponse {
	return employeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}

// ListEmployees は従業員一覧を返す。
// GET /api/employees
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]employeeResponse, 0, len(list))
	for _, e := range list {
		resp = append(resp, toEmployeeResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetEmployee は従業員詳細を取得する。
// GET /api/employees/{id}
func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if e == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewEmployeeNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(e))
}

// CreateEmployee は従業員を作成する。
// POST /api/employees
func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("name"))
		return
	}

	now := time.Now()
	e := &model.Employee{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.Create(r.Context(), e); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeResponse(e))
}

// UpdateEmployee は従業員情報を更新する。
// PUT /api/employees/{id}
func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("name"))
		return
	}

	e, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if e == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewEmployeeNotFoundError(id))
		return
	}

	e.Name = req.Name
	e.UpdatedAt = time.Now()
	if err := h.store.Update(r.Context(), e); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(e))
}

// DeleteEmployee は従業員を削除する。
// 過去のステータス行は履歴として残す。
// DELETE /api/employees/{id}
func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if e == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewEmployeeNotFoundError(id))
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
