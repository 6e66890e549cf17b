// Package export はステータスのCSVエクスポートを提供する。
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// WriteStatusCSV は全ステータスをCSVとして書き出す。
// 行はemployee_id、day、textの3列。from/toが指定されている場合は
// その日付範囲（両端含む、辞書順比較）に絞り込む。
// 出力順はemployee_id昇順、day昇順で決定的。
func WriteStatusCSV(w io.Writer, statuses model.StatusMap, from, to string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"employee_id", "day", "text"}); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}

	employees := make([]string, 0, len(statuses))
	for employeeID := range statuses {
		employees = append(employees, employeeID)
	}
	sort.Strings(employees)

	for _, employeeID := range employees {
		days := statuses[employeeID]
		dayKeys := make([]string, 0, len(days))
		for day := range days {
			dayKeys = append(dayKeys, day)
		}
		sort.Strings(dayKeys)

		for _, day := range dayKeys {
			if from != "" && day < from {
				continue
			}
			if to != "" && day > to {
				continue
			}
			if err := cw.Write([]string{employeeID, day, days[day]}); err != nil {
				return fmt.Errorf("CSV行の書き込みに失敗しました: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSVのフラッシュに失敗しました: %w", err)
	}
	return nil
}
