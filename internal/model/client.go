package model

import "time"

// Client は取引先を表す。
type Client struct {
	ID        string
	Name      string
	Contact   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
