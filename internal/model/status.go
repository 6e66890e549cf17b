package model

import "time"

// Status は(従業員, 日)ごとのステータステキストを表す永続化行。
// 空テキストは保存されない（行削除のトゥームストーン扱い）。
type Status struct {
	EmployeeID string
	Day        string
	Text       string
	UpdatedAt  time.Time
}

// StatusMap はライブキャッシュおよび全件スナップショットの形。
// employee ID → day → text の2段マップ。
type StatusMap = map[string]map[string]string
