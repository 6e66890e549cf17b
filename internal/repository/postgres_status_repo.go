package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// PostgresStatusRepo はPostgreSQLを使用したステータスリポジトリ。
type PostgresStatusRepo struct {
	db *sql.DB
}

// NewPostgresStatusRepo はPostgresStatusRepoを生成する。
func NewPostgresStatusRepo(db *sql.DB) *PostgresStatusRepo {
	return &PostgresStatusRepo{db: db}
}

// Upsert は指定ペアのステータスを冪等にUPSERTする。
// PRIMARY KEY(employee_id, day)を利用したINSERT ON CONFLICTで実装する。
// 別ペアへの同時Upsertは行ロックの単位が異なるため互いに干渉しない。
func (r *PostgresStatusRepo) Upsert(ctx context.Context, employeeID, day, text string) error {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO statuses (employee_id, day, text, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (employee_id, day) DO UPDATE SET
		     text = EXCLUDED.text,
		     updated_at = EXCLUDED.updated_at`,
		employeeID, day, text, now,
	)
	if err != nil {
		return fmt.Errorf("ステータスの保存に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定ペアの行を削除する。行が存在しない場合もエラーにしない。
func (r *PostgresStatusRepo) Delete(ctx context.Context, employeeID, day string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM statuses WHERE employee_id = $1 AND day = $2`,
		employeeID, day,
	)
	if err != nil {
		return fmt.Errorf("ステータスの削除に失敗しました: %w", err)
	}
	return nil
}

// LoadAll は全ステータス行を2段マップで返す。
func (r *PostgresStatusRepo) LoadAll(ctx context.Context) (model.StatusMap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT employee_id, day, text FROM statuses`,
	)
	if err != nil {
		return nil, fmt.Errorf("ステータス一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	all := model.StatusMap{}
	for rows.Next() {
		var employeeID, day, text string
		if err := rows.Scan(&employeeID, &day, &text); err != nil {
			return nil, fmt.Errorf("ステータス行の読み取りに失敗しました: %w", err)
		}
		days, ok := all[employeeID]
		if !ok {
			days = map[string]string{}
			all[employeeID] = days
		}
		days[day] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ステータス一覧の走査に失敗しました: %w", err)
	}

	return all, nil
}

// compile-time interface check
var _ StatusRepository = (*PostgresStatusRepo)(nil)
