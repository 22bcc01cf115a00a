// internal/models/farm.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Farm struct {
	BaseModel
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Location    string         `json:"location" gorm:"size:255"`
	Latitude    *float64       `json:"latitude,omitempty" gorm:"type:decimal(9,6)"`
	Longitude   *float64       `json:"longitude,omitempty" gorm:"type:decimal(9,6)"`
	AreaHa      float64        `json:"area_ha" gorm:"type:decimal(12,2)"`
	Photos      pq.StringArray `json:"photos" gorm:"type:text[]"`

	// Relationships
	Owner   User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Plots   []Plot       `json:"plots,omitempty" gorm:"foreignKey:FarmID"`
	Members []FarmMember `json:"members,omitempty" gorm:"foreignKey:FarmID"`
}

type Plot struct {
	BaseModel
	FarmID   uuid.UUID `json:"farm_id" gorm:"type:uuid;not null;index"`
	Name     string    `json:"name" gorm:"size:255;not null"`
	Crop     string    `json:"crop" gorm:"size:100"`
	AreaHa   float64   `json:"area_ha" gorm:"type:decimal(12,2)"`
	SoilType string    `json:"soil_type" gorm:"size:50"`
	Notes    string    `json:"notes" gorm:"type:text"`

	Farm Farm `json:"farm,omitempty" gorm:"foreignKey:FarmID"`
}

type FarmMember struct {
	BaseModel
	FarmID uuid.UUID `json:"farm_id" gorm:"type:uuid;not null;uniqueIndex:idx_farm_members_farm_user"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_farm_members_farm_user"`
	Role   FarmRole  `json:"role" gorm:"type:varchar(20);not null;default:'worker'"`

	Farm Farm `json:"farm,omitempty" gorm:"foreignKey:FarmID"`
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
