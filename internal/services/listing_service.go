// internal/services/listing_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

// ListingStore is the read-only listing contract the negotiation engine
// consumes. The engine never mutates Offer or Demand records through it.
type ListingStore interface {
	GetListing(kind models.ListingKind, id uuid.UUID) (*models.Listing, error)
	IsOwner(listing *models.Listing, userID uuid.UUID) bool
}

type ListingService struct {
	db *gorm.DB
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{db: db}
}

type CreateOfferRequest struct {
	Title       string                 `json:"title" validate:"required,min=3,max=255"`
	Description string                 `json:"description,omitempty"`
	Category    models.ListingCategory `json:"category" validate:"required"`
	Price       float64                `json:"price" validate:"required,gt=0"`
	Quantity    float64                `json:"quantity" validate:"required,gt=0"`
	Unit        string                 `json:"unit" validate:"required,max=30"`
	Location    string                 `json:"location" validate:"required,max=255"`
	Latitude    *float64               `json:"latitude,omitempty"`
	Longitude   *float64               `json:"longitude,omitempty"`
	Images      []string               `json:"images,omitempty"`
}

type UpdateOfferRequest struct {
	Title       string                `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description string                `json:"description,omitempty"`
	Price       *float64              `json:"price,omitempty" validate:"omitempty,gt=0"`
	Quantity    *float64              `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Unit        string                `json:"unit,omitempty" validate:"omitempty,max=30"`
	Location    string                `json:"location,omitempty" validate:"omitempty,max=255"`
	Images      []string              `json:"images,omitempty"`
	Status      *models.ListingStatus `json:"status,omitempty"`
}

type CreateDemandRequest struct {
	Title       string                 `json:"title" validate:"required,min=3,max=255"`
	Description string                 `json:"description,omitempty"`
	Category    models.ListingCategory `json:"category" validate:"required"`
	MaxPrice    float64                `json:"max_price" validate:"required,gt=0"`
	Quantity    float64                `json:"quantity" validate:"required,gt=0"`
	Unit        string                 `json:"unit" validate:"required,max=30"`
	Location    string                 `json:"location" validate:"required,max=255"`
	Latitude    *float64               `json:"latitude,omitempty"`
	Longitude   *float64               `json:"longitude,omitempty"`
}

type UpdateDemandRequest struct {
	Title       string                `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description string                `json:"description,omitempty"`
	MaxPrice    *float64              `json:"max_price,omitempty" validate:"omitempty,gt=0"`
	Quantity    *float64              `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Unit        string                `json:"unit,omitempty" validate:"omitempty,max=30"`
	Location    string                `json:"location,omitempty" validate:"omitempty,max=255"`
	Status      *models.ListingStatus `json:"status,omitempty"`
}

type ListingSearchParams struct {
	utils.PaginationParams
	UserID   *uuid.UUID            `json:"user_id,omitempty"`
	Status   *models.ListingStatus `json:"status,omitempty"`
	PriceMin *float64              `json:"price_min,omitempty"`
	PriceMax *float64              `json:"price_max,omitempty"`
}

// GetListing resolves either listing variant into the engine's kind-agnostic
// view.
func (s *ListingService) GetListing(kind models.ListingKind, id uuid.UUID) (*models.Listing, error) {
	switch kind {
	case models.ListingKindOffer:
		var offer models.Offer
		if err := s.db.First(&offer, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("offer")
			}
			return nil, apperrors.Internal("failed to load offer", err)
		}
		return offer.Listing(), nil
	case models.ListingKindDemand:
		var demand models.Demand
		if err := s.db.First(&demand, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("demand")
			}
			return nil, apperrors.Internal("failed to load demand", err)
		}
		return demand.Listing(), nil
	}
	return nil, apperrors.InvalidRequest("unknown listing kind %q", kind)
}

func (s *ListingService) IsOwner(listing *models.Listing, userID uuid.UUID) bool {
	return listing != nil && listing.OwnerID == userID
}

// Offer CRUD

func (s *ListingService) CreateOffer(userID uuid.UUID, req *CreateOfferRequest) (*models.Offer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}
	if !req.Category.Valid() {
		return nil, apperrors.InvalidRequest("unknown category %q", req.Category)
	}

	offer := &models.Offer{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Images:      req.Images,
		Status:      models.ListingStatusActive,
	}

	if err := s.db.Create(offer).Error; err != nil {
		return nil, apperrors.Internal("failed to create offer", err)
	}

	s.db.Preload("User").First(offer, "id = ?", offer.ID)
	return offer, nil
}

func (s *ListingService) GetOffer(id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := s.db.Preload("User").First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("offer")
		}
		return nil, apperrors.Internal("failed to load offer", err)
	}
	return &offer, nil
}

func (s *ListingService) UpdateOffer(id, userID uuid.UUID, req *UpdateOfferRequest) (*models.Offer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}

	var offer models.Offer
	if err := s.db.First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("offer")
		}
		return nil, apperrors.Internal("failed to load offer", err)
	}

	if offer.UserID != userID {
		return nil, apperrors.Forbidden("not the owner of this offer")
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != "" {
		updates["unit"] = req.Unit
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(&offer).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("failed to update offer", err)
		}
	}

	s.db.Preload("User").First(&offer, "id = ?", id)
	return &offer, nil
}

func (s *ListingService) DeleteOffer(id, userID uuid.UUID, isAdmin bool) error {
	var offer models.Offer
	if err := s.db.First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("offer")
		}
		return apperrors.Internal("failed to load offer", err)
	}

	if offer.UserID != userID && !isAdmin {
		return apperrors.Forbidden("not the owner of this offer")
	}

	if err := s.db.Delete(&offer).Error; err != nil {
		return apperrors.Internal("failed to delete offer", err)
	}
	return nil
}

func (s *ListingService) SearchOffers(params ListingSearchParams) ([]models.Offer, int64, error) {
	query := s.db.Model(&models.Offer{}).Preload("User")

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	} else {
		query = query.Where("status = ?", models.ListingStatusActive)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}
	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count offers", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "title", "price", "quantity"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var offers []models.Offer
	if err := query.Find(&offers).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch offers", err)
	}

	return offers, total, nil
}

// Demand CRUD

func (s *ListingService) CreateDemand(userID uuid.UUID, req *CreateDemandRequest) (*models.Demand, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}
	if !req.Category.Valid() {
		return nil, apperrors.InvalidRequest("unknown category %q", req.Category)
	}

	demand := &models.Demand{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		MaxPrice:    req.MaxPrice,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      models.ListingStatusActive,
	}

	if err := s.db.Create(demand).Error; err != nil {
		return nil, apperrors.Internal("failed to create demand", err)
	}

	s.db.Preload("User").First(demand, "id = ?", demand.ID)
	return demand, nil
}

func (s *ListingService) GetDemand(id uuid.UUID) (*models.Demand, error) {
	var demand models.Demand
	if err := s.db.Preload("User").First(&demand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("demand")
		}
		return nil, apperrors.Internal("failed to load demand", err)
	}
	return &demand, nil
}

func (s *ListingService) UpdateDemand(id, userID uuid.UUID, req *UpdateDemandRequest) (*models.Demand, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}

	var demand models.Demand
	if err := s.db.First(&demand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("demand")
		}
		return nil, apperrors.Internal("failed to load demand", err)
	}

	if demand.UserID != userID {
		return nil, apperrors.Forbidden("not the owner of this demand")
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.MaxPrice != nil {
		updates["max_price"] = *req.MaxPrice
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != "" {
		updates["unit"] = req.Unit
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(&demand).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("failed to update demand", err)
		}
	}

	s.db.Preload("User").First(&demand, "id = ?", id)
	return &demand, nil
}

func (s *ListingService) DeleteDemand(id, userID uuid.UUID, isAdmin bool) error {
	var demand models.Demand
	if err := s.db.First(&demand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("demand")
		}
		return apperrors.Internal("failed to load demand", err)
	}

	if demand.UserID != userID && !isAdmin {
		return apperrors.Forbidden("not the owner of this demand")
	}

	if err := s.db.Delete(&demand).Error; err != nil {
		return apperrors.Internal("failed to delete demand", err)
	}
	return nil
}

func (s *ListingService) SearchDemands(params ListingSearchParams) ([]models.Demand, int64, error) {
	query := s.db.Model(&models.Demand{}).Preload("User")

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	} else {
		query = query.Where("status = ?", models.ListingStatusActive)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}
	if params.PriceMin != nil {
		query = query.Where("max_price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("max_price <= ?", *params.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count demands", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "title", "max_price", "quantity"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var demands []models.Demand
	if err := query.Find(&demands).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch demands", err)
	}

	return demands, total, nil
}
