package models

import "time"

type NotificationIcon string

const (
	IconAccepted NotificationIcon = "check-circle"
	IconRejected NotificationIcon = "x-circle"
	IconRemoved  NotificationIcon = "trash"
)

// Notification is addressed to a farmer. It copies booking details by value
// so it stays meaningful after the booking is deleted.
type Notification struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string           `gorm:"not null;index" json:"userId"`
	Icon        NotificationIcon `gorm:"type:varchar(32);not null" json:"icon"`
	Title       string           `gorm:"not null" json:"title"`
	Description string           `gorm:"not null" json:"description"`
	Timestamp   time.Time        `gorm:"autoCreateTime" json:"timestamp"`
	Read        bool             `gorm:"not null;default:false" json:"read"`
}
