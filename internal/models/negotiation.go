// internal/models/negotiation.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Negotiation is a proposal thread attached to exactly one listing: either
// OfferID or DemandID is set, never both. ListingOwnerID is denormalized at
// creation time (listing ownership never changes) so authorization and list
// scoping need no join against the listing tables.
type Negotiation struct {
	BaseModel
	OfferID        *uuid.UUID        `json:"offer_id,omitempty" gorm:"type:uuid;index"`
	DemandID       *uuid.UUID        `json:"demand_id,omitempty" gorm:"type:uuid;index"`
	ProposerID     uuid.UUID         `json:"proposer_id" gorm:"type:uuid;not null;index"`
	ListingOwnerID uuid.UUID         `json:"listing_owner_id" gorm:"type:uuid;not null;index"`
	Price          float64           `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity       float64           `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Message        string            `json:"message" gorm:"type:text"`
	Status         NegotiationStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`

	// Relationships
	Proposer     User               `json:"proposer,omitempty" gorm:"foreignKey:ProposerID"`
	ListingOwner User               `json:"listing_owner,omitempty" gorm:"foreignKey:ListingOwnerID"`
	Events       []NegotiationEvent `json:"events,omitempty" gorm:"foreignKey:NegotiationID"`
}

func (n *Negotiation) ListingKind() ListingKind {
	if n.OfferID != nil {
		return ListingKindOffer
	}
	return ListingKindDemand
}

func (n *Negotiation) ListingID() uuid.UUID {
	if n.OfferID != nil {
		return *n.OfferID
	}
	if n.DemandID != nil {
		return *n.DemandID
	}
	return uuid.Nil
}

// Counterparty returns the other side of the thread relative to actorID.
func (n *Negotiation) Counterparty(actorID uuid.UUID) uuid.UUID {
	if actorID == n.ProposerID {
		return n.ListingOwnerID
	}
	return n.ProposerID
}

type NegotiationEventKind string

const (
	EventKindCounterOffer NegotiationEventKind = "counter_offer"
	EventKindMessage      NegotiationEventKind = "message"
	EventKindStatus       NegotiationEventKind = "status"
)

// NegotiationEvent is one immutable entry in a negotiation's history: the
// opening proposal, each counter-offer, and each status change. Rows are only
// ever appended.
type NegotiationEvent struct {
	ID            uuid.UUID            `json:"id" gorm:"type:uuid;primary_key"`
	NegotiationID uuid.UUID            `json:"negotiation_id" gorm:"type:uuid;not null;index"`
	AuthorID      uuid.UUID            `json:"author_id" gorm:"type:uuid;not null"`
	Kind          NegotiationEventKind `json:"kind" gorm:"type:varchar(20);not null"`
	Price         float64              `json:"price" gorm:"type:decimal(12,2)"`
	Quantity      float64              `json:"quantity" gorm:"type:decimal(12,2)"`
	Message       string               `json:"message" gorm:"type:text"`
	Status        NegotiationStatus    `json:"status,omitempty" gorm:"type:varchar(20)"`
	CreatedAt     time.Time            `json:"created_at"`

	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (e *NegotiationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NegotiationMessage is the wire projection of an event for the messages[]
// field on negotiation reads.
type NegotiationMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
}
