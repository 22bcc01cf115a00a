// internal/models/listing.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ListingKind discriminates the two listing variants.
type ListingKind string

const (
	ListingKindOffer  ListingKind = "offer"
	ListingKindDemand ListingKind = "demand"
)

// Offer is a seller-initiated listing with an exact asking price.
type Offer struct {
	BaseModel
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string          `json:"title" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Category    ListingCategory `json:"category" gorm:"type:varchar(20);not null;index"`
	Price       float64         `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity    float64         `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Unit        string          `json:"unit" gorm:"size:30"`
	Location    string          `json:"location" gorm:"size:255"`
	Latitude    *float64        `json:"latitude,omitempty" gorm:"type:decimal(9,6)"`
	Longitude   *float64        `json:"longitude,omitempty" gorm:"type:decimal(9,6)"`
	Images      pq.StringArray  `json:"images" gorm:"type:text[]"`
	Status      ListingStatus   `json:"status" gorm:"type:varchar(20);default:'ACTIVE';index"`

	// Relationships
	User         User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Negotiations []Negotiation `json:"negotiations,omitempty" gorm:"foreignKey:OfferID"`
}

// Demand is a buyer-initiated listing carrying the maximum acceptable price.
type Demand struct {
	BaseModel
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string          `json:"title" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Category    ListingCategory `json:"category" gorm:"type:varchar(20);not null;index"`
	MaxPrice    float64         `json:"max_price" gorm:"type:decimal(12,2);not null"`
	Quantity    float64         `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Unit        string          `json:"unit" gorm:"size:30"`
	Location    string          `json:"location" gorm:"size:255"`
	Latitude    *float64        `json:"latitude,omitempty" gorm:"type:decimal(9,6)"`
	Longitude   *float64        `json:"longitude,omitempty" gorm:"type:decimal(9,6)"`
	Status      ListingStatus   `json:"status" gorm:"type:varchar(20);default:'ACTIVE';index"`

	// Relationships
	User         User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Negotiations []Negotiation `json:"negotiations,omitempty" gorm:"foreignKey:DemandID"`
}

// Listing is the kind-agnostic view of an Offer or Demand consumed by the
// negotiation engine. Price carries the offer price or the demand max price.
type Listing struct {
	Kind     ListingKind     `json:"kind"`
	ID       uuid.UUID       `json:"id"`
	OwnerID  uuid.UUID       `json:"owner_id"`
	Title    string          `json:"title"`
	Category ListingCategory `json:"category"`
	Price    float64         `json:"price"`
	Quantity float64         `json:"quantity"`
	Unit     string          `json:"unit"`
	Location string          `json:"location"`
	Status   ListingStatus   `json:"status"`
}

func (o *Offer) Listing() *Listing {
	return &Listing{
		Kind:     ListingKindOffer,
		ID:       o.ID,
		OwnerID:  o.UserID,
		Title:    o.Title,
		Category: o.Category,
		Price:    o.Price,
		Quantity: o.Quantity,
		Unit:     o.Unit,
		Location: o.Location,
		Status:   o.Status,
	}
}

func (d *Demand) Listing() *Listing {
	return &Listing{
		Kind:     ListingKindDemand,
		ID:       d.ID,
		OwnerID:  d.UserID,
		Title:    d.Title,
		Category: d.Category,
		Price:    d.MaxPrice,
		Quantity: d.Quantity,
		Unit:     d.Unit,
		Location: d.Location,
		Status:   d.Status,
	}
}
