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

// ClientStore は取引先ハンドラーが必要とするリポジトリインターフェース。
type ClientStore interface {
	FindByID(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context) ([]*model.Client, error)
	Create(ctx context.Context, c *model.Client) error
	Update(ctx context.Context, c *model.Client) error
	DeleteByID(ctx context.Context, id string) error
}

// ClientHandler は取引先管理のHTTPハンドラー。
type ClientHandler struct {
	store ClientStore
}

// NewClientHandler はClientHandlerを生成する。
func NewClientHandler(store ClientStore) *ClientHandler {
	return &ClientHandler{store: store}
}

// clientRequest は取引先作成・更新リクエストのボディ。
type clientRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// clientResponse は取引先情報のAPIレスポンス。
type clientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toClientResponse(c *model.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Contact:   c.Contact,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

// ListClients は取引先一覧を返す。
// GET /api/clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]clientResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, toClientResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetClient は取引先詳細を取得する。
// GET /api/clients/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if c == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewClientNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(c))
}

// CreateClient は取引先を作成する。
// POST /api/clients
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
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
	c := &model.Client{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Contact:   strings.TrimSpace(req.Contact),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.Create(r.Context(), c); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientResponse(c))
}

// UpdateClient は取引先情報を更新する。
// PUT /api/clients/{id}
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("name"))
		return
	}

	c, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if c == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewClientNotFoundError(id))
		return
	}

	c.Name = req.Name
	c.Contact = strings.TrimSpace(req.Contact)
	c.UpdatedAt = time.Now()
	if err := h.store.Update(r.Context(), c); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(c))
}

// DeleteClient は取引先を削除する。関連オファーも削除される。
// DELETE /api/clients/{id}
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if c == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewClientNotFoundError(id))
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
