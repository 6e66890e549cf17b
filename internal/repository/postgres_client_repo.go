package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// PostgresClientRepo はPostgreSQLを使用した取引先リポジトリ。
type PostgresClientRepo struct {
	db *sql.DB
}

// NewPostgresClientRepo はPostgresClientRepoを生成する。
func NewPostgresClientRepo(db *sql.DB) *PostgresClientRepo {
	return &PostgresClientRepo{db: db}
}

// FindByID は指定IDの取引先を取得する。見つからない場合はnilを返す。
func (r *PostgresClientRepo) FindByID(ctx context.Context, id string) (*model.Client, error) {
	c := &model.Client{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, contact, created_at, updated_at FROM clients WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Contact, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("取引先の取得に失敗しました: %w", err)
	}
	return c, nil
}

// List は全取引先を作成日時昇順で返す。
func (r *PostgresClientRepo) List(ctx context.Context) ([]*model.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, contact, created_at, updated_at FROM clients ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("取引先一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var list []*model.Client
	for rows.Next() {
		c := &model.Client{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("取引先行の読み取りに失敗しました: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("取引先一覧の走査に失敗しました: %w", err)
	}
	return list, nil
}

// Create は取引先を作成する。
func (r *PostgresClientRepo) Create(ctx context.Context, c *model.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, contact, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Contact, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("取引先の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は取引先情報を更新する。
func (r *PostgresClientRepo) Update(ctx context.Context, c *model.Client) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = $2, contact = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Name, c.Contact, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("取引先の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの取引先を削除する。
func (r *PostgresClientRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM clients WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("取引先の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ClientRepository = (*PostgresClientRepo)(nil)
