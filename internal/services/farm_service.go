// internal/services/farm_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type FarmService struct {
	db *gorm.DB
}

func NewFarmService(db *gorm.DB) *FarmService {
	return &FarmService{db: db}
}

type CreateFarmRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty" validate:"omitempty,max=255"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	AreaHa      float64  `json:"area_ha" validate:"omitempty,gt=0"`
	Photos      []string `json:"photos,omitempty"`
}

type CreatePlotRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	Crop     string  `json:"crop,omitempty" validate:"omitempty,max=100"`
	AreaHa   float64 `json:"area_ha" validate:"omitempty,gt=0"`
	SoilType string  `json:"soil_type,omitempty" validate:"omitempty,max=50"`
	Notes    string  `json:"notes,omitempty"`
}

type AddMemberRequest struct {
	UserID uuid.UUID       `json:"user_id" validate:"required"`
	Role   models.FarmRole `json:"role" validate:"required"`
}

func (s *FarmService) CreateFarm(ownerID uuid.UUID, req *CreateFarmRequest) (*models.Farm, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}

	farm := &models.Farm{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		AreaHa:      req.AreaHa,
		Photos:      req.Photos,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(farm).Error; err != nil {
			return err
		}
		member := &models.FarmMember{FarmID: farm.ID, UserID: ownerID, Role: models.FarmRoleOwner}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, apperrors.Internal("failed to create farm", err)
	}

	return farm, nil
}

func (s *FarmService) GetFarm(id uuid.UUID, actor Actor) (*models.Farm, error) {
	var farm models.Farm
	if err := s.db.Preload("Owner").Preload("Plots").Preload("Members").Preload("Members.User").
		First(&farm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("farm")
		}
		return nil, apperrors.Internal("failed to load farm", err)
	}

	if !s.isMember(&farm, actor.ID) && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("not a member of this farm")
	}

	return &farm, nil
}

func (s *FarmService) ListFarms(actor Actor, params utils.PaginationParams) ([]models.Farm, int64, error) {
	query := s.db.Model(&models.Farm{})
	if !actor.IsAdmin() {
		query = query.Where(
			"owner_id = ? OR id IN (SELECT farm_id FROM farm_members WHERE user_id = ?)",
			actor.ID, actor.ID,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count farms", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "updated_at", "name"})
	query = utils.ApplyPagination(query, params)

	var farms []models.Farm
	if err := query.Preload("Owner").Find(&farms).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch farms", err)
	}

	return farms, total, nil
}

func (s *FarmService) DeleteFarm(id uuid.UUID, actor Actor) error {
	var farm models.Farm
	if err := s.db.First(&farm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("farm")
		}
		return apperrors.Internal("failed to load farm", err)
	}

	if farm.OwnerID != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("only the farm owner may delete a farm")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("farm_id = ?", id).Delete(&models.FarmMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("farm_id = ?", id).Delete(&models.Plot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&farm).Error
	})
	if err != nil {
		return apperrors.Internal("failed to delete farm", err)
	}
	return nil
}

func (s *FarmService) AddPlot(farmID uuid.UUID, actor Actor, req *CreatePlotRequest) (*models.Plot, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}

	if err := s.requireManager(farmID, actor); err != nil {
		return nil, err
	}

	plot := &models.Plot{
		FarmID:   farmID,
		Name:     req.Name,
		Crop:     req.Crop,
		AreaHa:   req.AreaHa,
		SoilType: req.SoilType,
		Notes:    req.Notes,
	}

	if err := s.db.Create(plot).Error; err != nil {
		return nil, apperrors.Internal("failed to create plot", err)
	}
	return plot, nil
}

func (s *FarmService) AddMember(farmID uuid.UUID, actor Actor, req *AddMemberRequest) (*models.FarmMember, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}
	if req.Role != models.FarmRoleManager && req.Role != models.FarmRoleWorker {
		return nil, apperrors.InvalidRequest("invalid member role")
	}

	if err := s.requireManager(farmID, actor); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal("failed to load user", err)
	}

	member := &models.FarmMember{FarmID: farmID, UserID: req.UserID, Role: req.Role}
	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.InvalidRequest("user is already a member of this farm")
	}

	return member, nil
}

func (s *FarmService) RemoveMember(farmID, userID uuid.UUID, actor Actor) error {
	if err := s.requireManager(farmID, actor); err != nil {
		return err
	}

	var farm models.Farm
	if err := s.db.First(&farm, "id = ?", farmID).Error; err != nil {
		return apperrors.NotFound("farm")
	}
	if farm.OwnerID == userID {
		return apperrors.InvalidRequest("the farm owner cannot be removed")
	}

	result := s.db.Where("farm_id = ? AND user_id = ?", farmID, userID).Delete(&models.FarmMember{})
	if result.Error != nil {
		return apperrors.Internal("failed to remove member", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("farm member")
	}
	return nil
}

func (s *FarmService) isMember(farm *models.Farm, userID uuid.UUID) bool {
	if farm.OwnerID == userID {
		return true
	}
	var count int64
	s.db.Model(&models.FarmMember{}).
		Where("farm_id = ? AND user_id = ?", farm.ID, userID).
		Count(&count)
	return count > 0
}

func (s *FarmService) requireManager(farmID uuid.UUID, actor Actor) error {
	var farm models.Farm
	if err := s.db.First(&farm, "id = ?", farmID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("farm")
		}
		return apperrors.Internal("failed to load farm", err)
	}

	if farm.OwnerID == actor.ID || actor.IsAdmin() {
		return nil
	}

	var member models.FarmMember
	if err := s.db.Where("farm_id = ? AND user_id = ?", farmID, actor.ID).First(&member).Error; err == nil {
		if member.Role == models.FarmRoleManager {
			return nil
		}
	}

	return apperrors.Forbidden("manager access required")
}
