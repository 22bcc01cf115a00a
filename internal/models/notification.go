// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notification row. Rows are created only by the
// notification dispatcher in response to engine events; negotiation handlers
// never write them directly.
type Notification struct {
	BaseModel
	UserID  uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Type    NotificationType `json:"type" gorm:"type:varchar(30);not null;index"`
	Title   string           `json:"title" gorm:"size:255;not null"`
	Message string           `json:"message" gorm:"type:text;not null"`
	IsRead  bool             `json:"is_read" gorm:"default:false;index"`
	Payload JSONB            `json:"payload" gorm:"type:jsonb"`
	ReadAt  *time.Time       `json:"read_at"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
