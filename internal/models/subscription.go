// internal/models/subscription.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	BaseModel
	UserID               uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Plan                 SubscriptionPlan   `json:"plan" gorm:"type:varchar(20);not null;default:'FREE'"`
	Status               SubscriptionStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	StripeCustomerID     string             `json:"-" gorm:"size:255"`
	StripeSubscriptionID string             `json:"-" gorm:"size:255"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
