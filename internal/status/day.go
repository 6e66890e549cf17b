// Package status はライブキャッシュと更新パイプラインを提供する。
// サーバプロセス内の「誰がどの日に何を書いたか」の正本を管理する。
package status

import "regexp"

// dayPattern は日付キーの外部契約。YYYY-MM-DD以外は一切受け付けない。
var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDay はdayが日付キー形式（4桁年-2桁月-2桁日）かを返す。
func ValidDay(day string) bool {
	return dayPattern.MatchString(day)
}
