package model

import "time"

// ReportID identifies a moderation report
type ReportID int64

// Report flags a card for admin review
type Report struct {
	ID        ReportID
	CardID    CardID
	CreatedAt time.Time
}
