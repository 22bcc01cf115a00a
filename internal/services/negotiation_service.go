// internal/services/negotiation_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

// NegotiationService owns the negotiation state machine. It is stateless
// between calls; each operation is a single atomic write against one
// negotiation row. Listings are read through the ListingStore contract and
// never mutated here.
type NegotiationService struct {
	db         *gorm.DB
	listings   ListingStore
	dispatcher Dispatcher
}

func NewNegotiationService(db *gorm.DB, listings ListingStore, dispatcher Dispatcher) *NegotiationService {
	return &NegotiationService{
		db:         db,
		listings:   listings,
		dispatcher: dispatcher,
	}
}

type CreateNegotiationRequest struct {
	OfferID  *uuid.UUID `json:"offer_id,omitempty"`
	DemandID *uuid.UUID `json:"demand_id,omitempty"`
	Price    float64    `json:"price" validate:"gte=0"`
	Quantity float64    `json:"quantity" validate:"gte=0"`
	Message  string     `json:"message,omitempty"`
}

// UpdateNegotiationRequest carries a subset of mutable fields. Price and
// quantity are pointers so "not supplied" is distinguishable from zero: a
// present value must be strictly positive, and "no change" is expressed by
// omitting the field. Zero terms are only valid on the opening proposal.
type UpdateNegotiationRequest struct {
	Status   *models.NegotiationStatus `json:"status,omitempty"`
	Price    *float64                  `json:"price,omitempty"`
	Quantity *float64                  `json:"quantity,omitempty"`
	Message  string                    `json:"message,omitempty"`
}

type NegotiationListParams struct {
	utils.PaginationParams
	Status *models.NegotiationStatus `json:"status,omitempty"`
}

// NegotiationView is a negotiation joined with its listing summary and the
// messages projection derived from the append-only event log.
type NegotiationView struct {
	models.Negotiation
	Listing  *models.Listing             `json:"listing,omitempty"`
	Messages []models.NegotiationMessage `json:"messages"`
}

// Create opens a negotiation against an existing, still-active listing not
// owned by the actor. Exactly one of OfferID/DemandID must be set. A price or
// quantity of zero is permitted here and only here, signalling "let's discuss
// terms".
func (s *NegotiationService) Create(actor Actor, req *CreateNegotiationRequest) (*NegotiationView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}

	if (req.OfferID == nil) == (req.DemandID == nil) {
		return nil, apperrors.InvalidRequest("exactly one of offer_id or demand_id must be set")
	}
	if req.Price < 0 || req.Quantity < 0 {
		return nil, apperrors.InvalidRequest("price and quantity must not be negative")
	}

	kind := models.ListingKindOffer
	listingID := req.OfferID
	if req.DemandID != nil {
		kind = models.ListingKindDemand
		listingID = req.DemandID
	}

	listing, err := s.listings.GetListing(kind, *listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.ListingStatusActive {
		return nil, apperrors.InvalidRequest("listing is no longer active")
	}
	if !CanCreateNegotiation(actor.ID, listing) {
		return nil, apperrors.InvalidRequest("cannot negotiate your own listing")
	}

	negotiation := &models.Negotiation{
		OfferID:        req.OfferID,
		DemandID:       req.DemandID,
		ProposerID:     actor.ID,
		ListingOwnerID: listing.OwnerID,
		Price:          req.Price,
		Quantity:       req.Quantity,
		Message:        req.Message,
		Status:         models.NegotiationStatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(negotiation).Error; err != nil {
			return err
		}
		event := openingEvent(negotiation)
		return tx.Create(event).Error
	})
	if err != nil {
		return nil, apperrors.Internal("failed to create negotiation", err)
	}

	s.notifyCreated(negotiation, listing)

	return s.view(negotiation.ID, listing)
}

// Get returns the negotiation with its listing summary and message history.
func (s *NegotiationService) Get(actor Actor, id uuid.UUID) (*NegotiationView, error) {
	negotiation, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !CanViewNegotiation(actor, negotiation) {
		return nil, apperrors.Forbidden("not a party to this negotiation")
	}

	return s.buildView(negotiation, nil), nil
}

// Update applies a counter-offer or a status transition. Supplying a price or
// quantity always forces the status to COUNTER_OFFER regardless of any
// caller-supplied status: a new number reopens negotiation.
func (s *NegotiationService) Update(actor Actor, id uuid.UUID, req *UpdateNegotiationRequest) (*NegotiationView, error) {
	negotiation, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !CanMutateNegotiation(actor.ID, negotiation) {
		return nil, apperrors.Forbidden("not a party to this negotiation")
	}

	switch {
	case req.Price != nil || req.Quantity != nil:
		err = s.proposeNewTerms(actor, negotiation, req)
	case req.Status != nil:
		err = s.setStatus(actor, negotiation, *req.Status, req.Message)
	case req.Message != "":
		err = s.appendMessage(actor, negotiation, req.Message)
	default:
		err = apperrors.InvalidRequest("nothing to update")
	}
	if err != nil {
		return nil, err
	}

	// Reload so the projection includes the event this update appended.
	return s.view(negotiation.ID, nil)
}

// List returns negotiations visible to the actor ordered by updated_at
// descending. Administrators see all; everyone else only sees threads where
// they are the proposer or the listing owner.
func (s *NegotiationService) List(actor Actor, params NegotiationListParams) ([]NegotiationView, int64, error) {
	query := s.db.Model(&models.Negotiation{})

	if !actor.IsAdmin() {
		query = query.Where("proposer_id = ? OR listing_owner_id = ?", actor.ID, actor.ID)
	}
	if params.Status != nil {
		if !params.Status.Valid() {
			return nil, 0, apperrors.InvalidRequest("unknown status %q", *params.Status)
		}
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count negotiations", err)
	}

	query = query.Order("updated_at DESC").
		Preload("Proposer").Preload("ListingOwner")
	query = utils.ApplyPagination(query, params.PaginationParams)

	var negotiations []models.Negotiation
	if err := query.Find(&negotiations).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch negotiations", err)
	}

	views := make([]NegotiationView, 0, len(negotiations))
	for i := range negotiations {
		views = append(views, NegotiationView{Negotiation: negotiations[i], Messages: []models.NegotiationMessage{}})
	}
	return views, total, nil
}

// Delete hard-deletes a negotiation and its event history. Only the original
// proposer or an administrator may delete; the listing owner may not.
func (s *NegotiationService) Delete(actor Actor, id uuid.UUID) error {
	negotiation, err := s.load(id)
	if err != nil {
		return err
	}

	if !CanDeleteNegotiation(actor, negotiation) {
		return apperrors.Forbidden("only the proposer or an administrator may delete a negotiation")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("negotiation_id = ?", id).Delete(&models.NegotiationEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Negotiation{}, "id = ?", id).Error
	})
	if err != nil {
		return apperrors.Internal("failed to delete negotiation", err)
	}
	return nil
}

// proposeNewTerms is the explicit transition behind "a new number always
// reopens negotiation": it overrides any caller-supplied status with
// COUNTER_OFFER and appends an immutable counter-offer event. A COMPLETED
// negotiation cannot be reopened.
func (s *NegotiationService) proposeNewTerms(actor Actor, n *models.Negotiation, req *UpdateNegotiationRequest) error {
	if req.Price != nil && *req.Price <= 0 {
		return apperrors.InvalidRequest("price must be greater than zero")
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return apperrors.InvalidRequest("quantity must be greater than zero")
	}
	if n.Status == models.NegotiationStatusCompleted {
		return apperrors.InvalidRequest("a completed negotiation cannot be reopened")
	}

	if req.Price != nil {
		n.Price = *req.Price
	}
	if req.Quantity != nil {
		n.Quantity = *req.Quantity
	}
	if req.Message != "" {
		n.Message = req.Message
	}
	n.Status = models.NegotiationStatusCounterOffer

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(n).Error; err != nil {
			return err
		}
		event := &models.NegotiationEvent{
			NegotiationID: n.ID,
			AuthorID:      actor.ID,
			Kind:          models.EventKindCounterOffer,
			Price:         n.Price,
			Quantity:      n.Quantity,
			Message:       req.Message,
			Status:        models.NegotiationStatusCounterOffer,
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return apperrors.Internal("failed to update negotiation", err)
	}

	s.notifyUpdated(actor, n, fmt.Sprintf("New terms proposed: price %.2f, quantity %.2f", n.Price, n.Quantity))
	return nil
}

// setStatus applies a status-only transition. Repeating the current status is
// an idempotent no-op; any other transition out of a terminal status is
// rejected.
func (s *NegotiationService) setStatus(actor Actor, n *models.Negotiation, status models.NegotiationStatus, message string) error {
	if !status.Valid() {
		return apperrors.InvalidRequest("unknown status %q", status)
	}
	if status == n.Status {
		return nil
	}
	if !canTransition(n.Status, status) {
		return apperrors.InvalidRequest("cannot transition from %s to %s", n.Status, status)
	}

	n.Status = status
	if message != "" {
		n.Message = message
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(n).Error; err != nil {
			return err
		}
		event := &models.NegotiationEvent{
			NegotiationID: n.ID,
			AuthorID:      actor.ID,
			Kind:          models.EventKindStatus,
			Price:         n.Price,
			Quantity:      n.Quantity,
			Message:       message,
			Status:        status,
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return apperrors.Internal("failed to update negotiation", err)
	}

	s.notifyUpdated(actor, n, fmt.Sprintf("Negotiation is now %s", status))
	return nil
}

// appendMessage records a message-only update without touching terms or
// status.
func (s *NegotiationService) appendMessage(actor Actor, n *models.Negotiation, message string) error {
	n.Message = message

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(n).Error; err != nil {
			return err
		}
		event := &models.NegotiationEvent{
			NegotiationID: n.ID,
			AuthorID:      actor.ID,
			Kind:          models.EventKindMessage,
			Price:         n.Price,
			Quantity:      n.Quantity,
			Message:       message,
			Status:        n.Status,
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return apperrors.Internal("failed to update negotiation", err)
	}

	recipient := n.Counterparty(actor.ID)
	s.dispatch(recipient, models.NotificationNegotiationMessage, "New message", message, s.payload(n))
	return nil
}

// canTransition encodes PENDING → {ACCEPTED, REJECTED, COUNTER_OFFER} →
// COMPLETED. COUNTER_OFFER is re-enterable through proposeNewTerms; COMPLETED
// never reopens.
func canTransition(from, to models.NegotiationStatus) bool {
	switch from {
	case models.NegotiationStatusPending:
		return to == models.NegotiationStatusAccepted ||
			to == models.NegotiationStatusRejected ||
			to == models.NegotiationStatusCounterOffer
	case models.NegotiationStatusCounterOffer:
		return to == models.NegotiationStatusAccepted ||
			to == models.NegotiationStatusRejected ||
			to == models.NegotiationStatusCompleted
	case models.NegotiationStatusAccepted, models.NegotiationStatusRejected:
		return to == models.NegotiationStatusCompleted
	}
	return false
}

// Helpers

func (s *NegotiationService) load(id uuid.UUID) (*models.Negotiation, error) {
	var negotiation models.Negotiation
	if err := s.db.Preload("Proposer").Preload("ListingOwner").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("negotiation_events.created_at ASC")
		}).
		Preload("Events.Author").
		First(&negotiation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("negotiation")
		}
		return nil, apperrors.Internal("failed to load negotiation", err)
	}
	return &negotiation, nil
}

func (s *NegotiationService) view(id uuid.UUID, listing *models.Listing) (*NegotiationView, error) {
	negotiation, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return s.buildView(negotiation, listing), nil
}

func (s *NegotiationService) buildView(n *models.Negotiation, listing *models.Listing) *NegotiationView {
	if listing == nil {
		// Best-effort join; a vanished listing leaves the summary empty.
		if l, err := s.listings.GetListing(n.ListingKind(), n.ListingID()); err == nil {
			listing = l
		}
	}
	return &NegotiationView{
		Negotiation: *n,
		Listing:     listing,
		Messages:    projectMessages(n),
	}
}

// projectMessages derives the messages[] wire projection from the event log.
// Bare status events carry no conversational content and are omitted.
func projectMessages(n *models.Negotiation) []models.NegotiationMessage {
	messages := make([]models.NegotiationMessage, 0, len(n.Events))
	for i := range n.Events {
		event := &n.Events[i]
		if event.Kind == models.EventKindStatus && event.Message == "" {
			continue
		}
		msgType := "message"
		if event.Kind == models.EventKindCounterOffer {
			msgType = "counter_offer"
		}
		messages = append(messages, models.NegotiationMessage{
			ID:        event.ID.String(),
			Content:   event.Message,
			Price:     event.Price,
			Quantity:  event.Quantity,
			Type:      msgType,
			UserID:    event.AuthorID.String(),
			UserName:  event.Author.Username,
			Timestamp: event.CreatedAt,
		})
	}
	return messages
}

func openingEvent(n *models.Negotiation) *models.NegotiationEvent {
	kind := models.EventKindMessage
	if n.Price > 0 || n.Quantity > 0 {
		kind = models.EventKindCounterOffer
	}
	return &models.NegotiationEvent{
		NegotiationID: n.ID,
		AuthorID:      n.ProposerID,
		Kind:          kind,
		Price:         n.Price,
		Quantity:      n.Quantity,
		Message:       n.Message,
		Status:        models.NegotiationStatusPending,
	}
}

func (s *NegotiationService) notifyCreated(n *models.Negotiation, listing *models.Listing) {
	notifType := models.NotificationOfferInterest
	if n.DemandID != nil {
		notifType = models.NotificationDemandMatch
	}
	title := "New negotiation on your listing"
	message := fmt.Sprintf("Someone proposed %.2f for %.2f %s of %q", n.Price, n.Quantity, listing.Unit, listing.Title)
	if n.Price == 0 && n.Quantity == 0 {
		message = fmt.Sprintf("Someone wants to discuss terms for %q", listing.Title)
	}
	s.dispatch(n.ListingOwnerID, notifType, title, message, s.payload(n))
}

func (s *NegotiationService) notifyUpdated(actor Actor, n *models.Negotiation, summary string) {
	recipient := n.Counterparty(actor.ID)
	s.dispatch(recipient, models.NotificationNegotiationUpdate, "Negotiation updated", summary, s.payload(n))
}

// dispatch is best-effort by contract: the dispatcher swallows its own
// failures, and a nil dispatcher simply means notifications are disabled.
func (s *NegotiationService) dispatch(recipient uuid.UUID, notifType models.NotificationType, title, message string, payload models.JSONB) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Notify(recipient, notifType, title, message, payload)
}

func (s *NegotiationService) payload(n *models.Negotiation) models.JSONB {
	payload := models.JSONB{
		"negotiation_id": n.ID.String(),
		"status":         string(n.Status),
		"price":          n.Price,
		"quantity":       n.Quantity,
	}
	if n.OfferID != nil {
		payload["offer_id"] = n.OfferID.String()
	}
	if n.DemandID != nil {
		payload["demand_id"] = n.DemandID.String()
	}
	return payload
}
