package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// mockLeaveStore はLeaveStoreのモック実装。
type mockLeaveStore struct {
	findByIDFn       func(ctx context.Context, id string) (*model.LeavePeriod, error)
	listByEmployeeFn func(ctx context.Context, employeeID string) ([]*model.LeavePeriod, error)
	createFn         func(ctx context.Context, l *model.LeavePeriod) error
	deleteByIDFn     func(ctx context.Context, id string) error
}

func (m *mockLeaveStore) FindByID(ctx context.Context, id string) (*model.LeavePeriod, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockLeaveStore) ListByEmployee(ctx context.Context, employeeID string) ([]*model.LeavePeriod, error) {
	if m.listByEmployeeFn != nil {
		return m.listByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (m *mockLeaveStore) Create(ctx context.Context, l *model.LeavePeriod) error {
	if m.createFn != nil {
		return m.createFn(ctx, l)
	}
	return nil
}

func (m *mockLeaveStore) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

// mockEmployeeFinder はEmployeeFinderのモック実装。
type mockEmployeeFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Employee, error)
}

func (m *mockEmployeeFinder) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

// 既存従業員を返すfinder
func existingEmployeeFinder() *mockEmployeeFinder {
	return &mockEmployeeFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Employee, error) {
			return &model.Employee{ID: id, Name: "山田"}, nil
		},
	}
}

func TestLeaveHandler_CreateLeave_Success(t *testing.T) {
	var created *model.LeavePeriod
	store := &mockLeaveStore{
		createFn: func(ctx context.Context, l *model.LeavePeriod) error {
			created = l
			return nil
		},
	}
	h := NewLeaveHandler(store, existingEmployeeFinder())

	body := bytes.NewBufferString(`{"employee_id": "emp-1", "start_day": "2025-08-01", "end_day": "2025-08-05", "reason": "夏季休暇"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/leaves", body)
	w := httptest.NewRecorder()
	h.CreateLeave(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if created.StartDay != "2025-08-01" || created.EndDay != "2025-08-05" {
		t.Errorf("unexpected period: %+v", created)
	}
}

func TestLeaveHandler_CreateLeave_InvalidDay(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"start day malformed", `{"employee_id": "emp-1", "start_day": "2025-8-1", "end_day": "2025-08-05"}`},
		{"end day malformed", `{"employee_id": "emp-1", "start_day": "2025-08-01", "end_day": "20250805"}`},
		{"end before start", `{"employee_id": "emp-1", "start_day": "2025-08-05", "end_day": "2025-08-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLeaveHandler(&mockLeaveStore{}, existingEmployeeFinder())

			req := httptest.NewRequest(http.MethodPost, "/api/leaves", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.CreateLeave(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
			result := parseAPIErrorResponse(t, w)
			if result["code"] != model.ErrCodeInvalidDay {
				t.Errorf("expected code %s, got %s", model.ErrCodeInvalidDay, result["code"])
			}
		})
	}
}

func TestLeaveHandler_CreateLeave_EmployeeNotFound(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveStore{}, &mockEmployeeFinder{})

	body := bytes.NewBufferString(`{"employee_id": "unknown", "start_day": "2025-08-01", "end_day": "2025-08-05"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/leaves", body)
	w := httptest.NewRecorder()
	h.CreateLeave(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestLeaveHandler_ListLeaves_FiltersByEmployee(t *testing.T) {
	var gotEmployeeID string
	store := &mockLeaveStore{
		listByEmployeeFn: func(ctx context.Context, employeeID string) ([]*model.LeavePeriod, error) {
			gotEmployeeID = employeeID
			return []*model.LeavePeriod{
				{ID: "leave-1", EmployeeID: employeeID, StartDay: "2025-08-01", EndDay: "2025-08-05"},
			}, nil
		},
	}
	h := NewLeaveHandler(store, existingEmployeeFinder())

	req := httptest.NewRequest(http.MethodGet, "/api/leaves?employee_id=emp-1", nil)
	w := httptest.NewRecorder()
	h.ListLeaves(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotEmployeeID != "emp-1" {
		t.Errorf("expected employee_id filter emp-1, got %q", gotEmployeeID)
	}

	var resp []leaveResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "leave-1" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestLeaveHandler_DeleteLeave_NotFound(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveStore{}, existingEmployeeFinder())

	req := httptest.NewRequest(http.MethodDelete, "/api/leaves/unknown", nil)
	req = withChiURLParam(req, "id", "unknown")
	w := httptest.NewRecorder()
	h.DeleteLeave(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	result := parseAPIErrorResponse(t, w)
	if result["code"] != model.ErrCodeLeaveNotFound {
		t.Errorf("expected code %s, got %s", model.ErrCodeLeaveNotFound, result["code"])
	}
}
