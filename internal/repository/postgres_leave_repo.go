package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// PostgresLeaveRepo はPostgreSQLを使用した休暇期間リポジトリ。
type PostgresLeaveRepo struct {
	db *sql.DB
}

// NewPostgresLeaveRepo はPostgresLeaveRepoを生成する。
func NewPostgresLeaveRepo(db *sql.DB) *PostgresLeaveRepo {
	return &PostgresLeaveRepo{db: db}
}

// FindByID は指定IDの休暇期間を取得する。見つからない場合はnilを返す。
func (r *PostgresLeaveRepo) FindByID(ctx context.Context, id string) (*model.LeavePeriod, error) {
	l := &model.LeavePeriod{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, employee_id, start_day, end_day, reason, created_at
		 FROM leave_periods WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.EmployeeID, &l.StartDay, &l.EndDay, &l.Reason, &l.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("休暇期間の取得に失敗しました: %w", err)
	}
	return l, nil
}

// ListByEmployee は指定従業員の休暇期間を開始日昇順で返す。
// employeeIDが空の場合は全従業員分を返す。
func (r *PostgresLeaveRepo) ListByEmployee(ctx context.Context, employeeID string) ([]*model.LeavePeriod, error) {
	query := `SELECT id, employee_id, start_day, end_day, reason, created_at
	          FROM leave_periods`
	args := []any{}
	if employeeID != "" {
		query += ` WHERE employee_id = $1`
		args = append(args, employeeID)
	}
	query += ` ORDER BY start_day ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("休暇期間一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var list []*model.LeavePeriod
	for rows.Next() {
		l := &model.LeavePeriod{}
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.StartDay, &l.EndDay, &l.Reason, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("休暇期間行の読み取りに失敗しました: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("休暇期間一覧の走査に失敗しました: %w", err)
	}
	return list, nil
}

// Create は休暇期間を作成する。
func (r *PostgresLeaveRepo) Create(ctx context.Context, l *model.LeavePeriod) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO leave_periods (id, employee_id, start_day, end_day, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.EmployeeID, l.StartDay, l.EndDay, l.Reason, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("休暇期間の作成に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの休暇期間を削除する。
func (r *PostgresLeaveRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM leave_periods WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("休暇期間の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ LeaveRepository = (*PostgresLeaveRepo)(nil)
