package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// PostgresOfferRepo はPostgreSQLを使用したオファーリポジトリ。
type PostgresOfferRepo struct {
	db *sql.DB
}

// NewPostgresOfferRepo はPostgresOfferRepoを生成する。
func NewPostgresOfferRepo(db *sql.DB) *PostgresOfferRepo {
	return &PostgresOfferRepo{db: db}
}

// FindByID は指定IDのオファーを取得する。見つからない場合はnilを返す。
func (r *PostgresOfferRepo) FindByID(ctx context.Context, id string) (*model.Offer, error) {
	o := &model.Offer{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, title, description, price, state, created_at, updated_at
		 FROM offers WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.ClientID, &o.Title, &o.Description, &o.Price, &o.State, &o.CreatedAt, &o.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("オファーの取得に失敗しました: %w", err)
	}
	return o, nil
}

// ListByClient は指定取引先のオファーを作成日時降順で返す。
// clientIDが空の場合は全取引先分を返す。
func (r *PostgresOfferRepo) ListByClient(ctx context.Context, clientID string) ([]*model.Offer, error) {
	query := `SELECT id, client_id, title, description, price, state, created_at, updated_at
	          FROM offers`
	args := []any{}
	if clientID != "" {
		query += ` WHERE client_id = $1`
		args = append(args, clientID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("オファー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var list []*model.Offer
	for rows.Next() {
		o := &model.Offer{}
		if err := rows.Scan(&o.ID, &o.ClientID, &o.Title, &o.Description, &o.Price, &o.State, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("オファー行の読み取りに失敗しました: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("オファー一覧の走査に失敗しました: %w", err)
	}
	return list, nil
}

// Create はオファーを作成する。
func (r *PostgresOfferRepo) Create(ctx context.Context, o *model.Offer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO offers (id, client_id, title, description, price, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.ClientID, o.Title, o.Description, o.Price, o.State, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("オファーの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はオファーを更新する。
func (r *PostgresOfferRepo) Update(ctx context.Context, o *model.Offer) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE offers SET title = $2, description = $3, price = $4, state = $5, updated_at = $6
		 WHERE id = $1`,
		o.ID, o.Title, o.Description, o.Price, o.State, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("オファーの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのオファーを削除する。
func (r *PostgresOfferRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM offers WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("オファーの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ OfferRepository = (*PostgresOfferRepo)(nil)
