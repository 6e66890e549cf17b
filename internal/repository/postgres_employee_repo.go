package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// PostgresEmployeeRepo はPostgreSQLを使用した従業員リポジトリ。
type PostgresEmployeeRepo struct {
	db *sql.DB
}

// NewPostgresEmployeeRepo はPostgresEmployeeRepoを生成する。
func NewPostgresEmployeeRepo(db *sql.DB) *PostgresEmployeeRepo {
	return &PostgresEmployeeRepo{db: db}
}

// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	e := &model.Employee{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM employees WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("従業員の取得に失敗しました: %w", err)
	}
	return e, nil
}

// List は全従業員を作成日時昇順で返す。
func (r *PostgresEmployeeRepo) List(ctx context.Context) ([]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM employees ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("従業員一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var list []*model.Employee
	for rows.Next() {
		e := &model.Employee{}
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("従業員行の読み取りに失敗しました: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("従業員一覧の走査に失敗しました: %w", err)
	}
	return list, nil
}

// Create は従業員を作成する。
func (r *PostgresEmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Name, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("従業員の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は従業員情報を更新する。
func (r *PostgresEmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE employees SET name = $2, updated_at = $3 WHERE id = $1`,
		e.ID, e.Name, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("従業員の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの従業員を削除する。
// statuses行はこのレイヤでは削除しない。
func (r *PostgresEmployeeRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM employees WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("従業員の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ EmployeeRepository = (*PostgresEmployeeRepo)(nil)
