// Package model はドメインモデルを定義する。
package model

import "time"

// Employee はステータスの持ち主である従業員を表す。
// IDは作成時に採番され、削除後も同一キャッシュ生存期間内では再利用しない。
type Employee struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
