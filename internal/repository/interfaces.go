// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// StatusRepository はステータス行の永続化インターフェース。
// (employee_id, day)ペアごとに最大1行を保持する。
type StatusRepository interface {
	// Upsert は指定ペアのステータスを作成または上書きし、updated_atを更新する。
	Upsert(ctx context.Context, employeeID, day, text string) error

	// Delete は指定ペアの行を削除する。行が存在しない場合もエラーにしない。
	Delete(ctx context.Context, employeeID, day string) error

	// LoadAll は全ステータス行をemployee ID → day → textのマップで返す。
	// 起動時のライブキャッシュ再構築に使用する。
	LoadAll(ctx context.Context) (model.StatusMap, error)
}

// EmployeeRepository は従業員データの永続化インターフェース。
type EmployeeRepository interface {
	// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Employee, error)

	// List は全従業員を作成日時昇順で返す。
	List(ctx context.Context) ([]*model.Employee, error)

	// Create は従業員を作成する。
	Create(ctx context.Context, e *model.Employee) error

	// Update は従業員情報を更新する。
	Update(ctx context.Context, e *model.Employee) error

	// DeleteByID は指定IDの従業員を削除する。
	// 関連するleave_periodsはCASCADE削除される。
	// statuses行は意図的に残す（孤児行として許容する）。
	DeleteByID(ctx context.Context, id string) error
}

// ClientRepository は取引先データの永続化インターフェース。
type ClientRepository interface {
	// FindByID は指定IDの取引先を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Client, error)

	// List は全取引先を作成日時昇順で返す。
	List(ctx context.Context) ([]*model.Client, error)

	// Create は取引先を作成する。
	Create(ctx context.Context, c *model.Client) error

	// Update は取引先情報を更新する。
	Update(ctx context.Context, c *model.Client) error

	// DeleteByID は指定IDの取引先を削除する。関連するoffersはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// LeaveRepository は休暇期間データの永続化インターフェース。
type LeaveRepository interface {
	// FindByID は指定IDの休暇期間を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.LeavePeriod, error)

	// ListByEmployee は指定従業員の休暇期間を開始日昇順で返す。
	// employeeIDが空の場合は全従業員分を返す。
	ListByEmployee(ctx context.Context, employeeID string) ([]*model.LeavePeriod, error)

	// Create は休暇期間を作成する。
	Create(ctx context.Context, l *model.LeavePeriod) error

	// DeleteByID は指定IDの休暇期間を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// OfferRepository はオファーデータの永続化インターフェース。
type OfferRepository interface {
	// FindByID は指定IDのオファーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Offer, error)

	// ListByClient は指定取引先のオファーを作成日時降順で返す。
	// clientIDが空の場合は全取引先分を返す。
	ListByClient(ctx context.Context, clientID string) ([]*model.Offer, error)

	// Create はオファーを作成する。
	Create(ctx context.Context, o *model.Offer) error

	// Update はオファーを更新する。
	Update(ctx context.Context, o *model.Offer) error

	// DeleteByID は指定IDのオファーを削除する。
	DeleteByID(ctx context.Context, id string) error
}
