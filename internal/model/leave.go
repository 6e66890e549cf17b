package model

import "time"

// LeavePeriod は従業員の休暇期間を表す。
// StartDay/EndDayはステータスと同じYYYY-MM-DD形式の日付キー。
type LeavePeriod struct {
	ID         string
	EmployeeID string
	StartDay   string
	EndDay     string
	Reason     string
	CreatedAt  time.Time
}
