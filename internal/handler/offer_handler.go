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

// OfferStore はオファーハンドラーが必要とするリポジトリインターフェース。
type OfferStore interface {
	FindByID(ctx context.Context, id string) (*model.Offer, error)
	ListByClient(ctx context.Context, clientID string) ([]*model.Offer, error)
	Create(ctx context.Context, o *model.Offer) error
	Update(ctx context.Context, o *model.Offer) error
	DeleteByID(ctx context.Context, id string) error
}

// ClientFinder はオファー作成時の取引先存在チェックに使うインターフェース。
type ClientFinder interface {
	FindByID(ctx context.Context, id string) (*model.Client, error)
}

// OfferHandler はオファー管理のHTTPハンドラー。
type OfferHandler struct {
	store  OfferStore
	finder ClientFinder
}

// NewOfferHandler はOfferHandlerを生成する。
func NewOfferHandler(store OfferStore, finder ClientFinder) *OfferHandler {
	return &OfferHandler{store: store, finder: finder}
}

// createOfferRequest はオファー作成リクエストのボディ。
type createOfferRequest struct {
	ClientID    string  `json:"client_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// updateOfferRequest はオファー更新リクエストのボディ。
type updateOfferRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	State       string  `json:"state"`
}

// offerResponse はオファーのAPIレスポンス。
type offerResponse struct {
	ID          string  `json:"id"`
	ClientID    string  `json:"client_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	State       string  `json:"state"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toOfferResponse(o *model.Offer) offerResponse {
	return offerResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		Title:       o.Title,
		Description: o.Description,
		Price:       o.Price,
		State:       string(o.State),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
}

// ListOffers はオファー一覧を返す。client_idクエリで絞り込める。
// GET /api/offers
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")

	list, err := h.store.ListByClient(r.Context(), clientID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]offerResponse, 0, len(list))
	for _, o := range list {
		resp = append(resp, toOfferResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOffer はオファー詳細を取得する。
// GET /api/offers/{id}
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if o == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewOfferNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, toOfferResponse(o))
}

// CreateOffer はオファーをdraft状態で作成する。
// POST /api/offers
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	if req.ClientID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("client_id"))
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("title"))
		return
	}

	c, err := h.finder.FindByID(r.Context(), req.ClientID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if c == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewClientNotFoundError(req.ClientID))
		return
	}

	now := time.Now()
	o := &model.Offer{
		ID:          uuid.New().String(),
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		State:       model.OfferStateDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.Create(r.Context(), o); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOfferResponse(o))
}

// UpdateOffer はオファーの内容と状態を更新する。
// PUT /api/offers/{id}
func (h *OfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidBodyError())
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("title"))
		return
	}
	if !model.ValidOfferState(model.OfferState(req.State)) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidStateError(req.State))
		return
	}

	o, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if o == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewOfferNotFoundError(id))
		return
	}

	o.Title = req.Title
	o.Description = req.Description
	o.Price = req.Price
	o.State = model.OfferState(req.State)
	o.UpdatedAt = time.Now()
	if err := h.store.Update(r.Context(), o); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOfferResponse(o))
}

// DeleteOffer はオファーを削除する。
// DELETE /api/offers/{id}
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if o == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewOfferNotFoundError(id))
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
