// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns IDs client-side; a database default would tie the
// schema to one dialect.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeFarmer UserType = "farmer"
	UserTypeBuyer  UserType = "buyer"
	UserTypeAdmin  UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type ListingCategory string

const (
	CategoryCrops      ListingCategory = "CROPS"
	CategorySeeds      ListingCategory = "SEEDS"
	CategoryFertilizer ListingCategory = "FERTILIZER"
	CategoryEquipment  ListingCategory = "EQUIPMENT"
	CategoryLivestock  ListingCategory = "LIVESTOCK"
	CategoryServices   ListingCategory = "SERVICES"
	CategoryOther      ListingCategory = "OTHER"
)

func (c ListingCategory) Valid() bool {
	switch c {
	case CategoryCrops, CategorySeeds, CategoryFertilizer, CategoryEquipment,
		CategoryLivestock, CategoryServices, CategoryOther:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "ACTIVE"
	ListingStatusClosed  ListingStatus = "CLOSED"
	ListingStatusSold    ListingStatus = "SOLD"
	ListingStatusExpired ListingStatus = "EXPIRED"
)

type NegotiationStatus string

const (
	NegotiationStatusPending      NegotiationStatus = "PENDING"
	NegotiationStatusAccepted     NegotiationStatus = "ACCEPTED"
	NegotiationStatusRejected     NegotiationStatus = "REJECTED"
	NegotiationStatusCounterOffer NegotiationStatus = "COUNTER_OFFER"
	NegotiationStatusCompleted    NegotiationStatus = "COMPLETED"
)

func (s NegotiationStatus) Valid() bool {
	switch s {
	case NegotiationStatusPending, NegotiationStatusAccepted, NegotiationStatusRejected,
		NegotiationStatusCounterOffer, NegotiationStatusCompleted:
		return true
	}
	return false
}

type NotificationType string

const (
	NotificationNegotiationMessage NotificationType = "NEGOTIATION_MESSAGE"
	NotificationNegotiationUpdate  NotificationType = "NEGOTIATION_UPDATE"
	NotificationOfferInterest      NotificationType = "OFFER_INTEREST"
	NotificationDemandMatch        NotificationType = "DEMAND_MATCH"
	NotificationSystem             NotificationType = "SYSTEM"
)

type FarmRole string

const (
	FarmRoleOwner   FarmRole = "owner"
	FarmRoleManager FarmRole = "manager"
	FarmRoleWorker  FarmRole = "worker"
)

type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "FREE"
	PlanPro        SubscriptionPlan = "PRO"
	PlanEnterprise SubscriptionPlan = "ENTERPRISE"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)
