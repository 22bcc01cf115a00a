// internal/services/budget_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type BudgetService struct {
	db    *gorm.DB
	farms *FarmService
}

func NewBudgetService(db *gorm.DB, farms *FarmService) *BudgetService {
	return &BudgetService{db: db, farms: farms}
}

type CreateBudgetRequest struct {
	FarmID  uuid.UUID `json:"farm_id" validate:"required"`
	Season  string    `json:"season" validate:"required,max=50"`
	Year    int       `json:"year" validate:"required,gte=2000"`
	Planned float64   `json:"planned" validate:"omitempty,gte=0"`
}

type CreateBudgetEntryRequest struct {
	Label   string  `json:"label" validate:"required,max=255"`
	Kind    string  `json:"kind" validate:"required"`
	Planned float64 `json:"planned" validate:"omitempty,gte=0"`
	Actual  float64 `json:"actual" validate:"omitempty,gte=0"`
}

func (s *BudgetService) CreateBudget(actor Actor, req *CreateBudgetRequest) (*models.Budget, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}

	if err := s.farms.requireManager(req.FarmID, actor); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		FarmID:  req.FarmID,
		Season:  req.Season,
		Year:    req.Year,
		Planned: req.Planned,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Internal("failed to create budget", err)
	}
	return budget, nil
}

func (s *BudgetService) GetBudget(id uuid.UUID, actor Actor) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Entries").First(&budget, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("budget")
		}
		return nil, apperrors.Internal("failed to load budget", err)
	}

	if _, err := s.farms.GetFarm(budget.FarmID, actor); err != nil {
		return nil, err
	}

	return &budget, nil
}

func (s *BudgetService) ListBudgets(farmID uuid.UUID, actor Actor, params utils.PaginationParams) ([]models.Budget, int64, error) {
	if _, err := s.farms.GetFarm(farmID, actor); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Budget{}).Where("farm_id = ?", farmID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count budgets", err)
	}

	query = utils.ApplySort(query, params, []string{"year", "created_at", "season"})
	query = utils.ApplyPagination(query, params)

	var budgets []models.Budget
	if err := query.Find(&budgets).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch budgets", err)
	}
	return budgets, total, nil
}

func (s *BudgetService) AddEntry(budgetID uuid.UUID, actor Actor, req *CreateBudgetEntryRequest) (*models.BudgetEntry, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}
	if req.Kind != "expense" && req.Kind != "income" {
		return nil, apperrors.InvalidRequest("kind must be expense or income")
	}

	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("budget")
		}
		return nil, apperrors.Internal("failed to load budget", err)
	}

	if err := s.farms.requireManager(budget.FarmID, actor); err != nil {
		return nil, err
	}

	entry := &models.BudgetEntry{
		BudgetID: budgetID,
		Label:    req.Label,
		Kind:     req.Kind,
		Planned:  req.Planned,
		Actual:   req.Actual,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		// Budget totals are maintained on write so list views never need to
		// aggregate entries.
		return s.recalcTotals(tx, budgetID)
	})
	if err != nil {
		return nil, apperrors.Internal("failed to create budget entry", err)
	}
	return entry, nil
}

func (s *BudgetService) DeleteEntry(budgetID, entryID uuid.UUID, actor Actor) error {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("budget")
		}
		return apperrors.Internal("failed to load budget", err)
	}

	if err := s.farms.requireManager(budget.FarmID, actor); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND budget_id = ?", entryID, budgetID).Delete(&models.BudgetEntry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return s.recalcTotals(tx, budgetID)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("budget entry")
	}
	if err != nil {
		return apperrors.Internal("failed to delete budget entry", err)
	}
	return nil
}

func (s *BudgetService) recalcTotals(tx *gorm.DB, budgetID uuid.UUID) error {
	var totals struct {
		Planned float64
		Actual  float64
	}
	err := tx.Model(&models.BudgetEntry{}).
		Select("COALESCE(SUM(planned), 0) AS planned, COALESCE(SUM(actual), 0) AS actual").
		Where("budget_id = ?", budgetID).
		Scan(&totals).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Budget{}).Where("id = ?", budgetID).
		Updates(map[string]interface{}{"planned": totals.Planned, "actual": totals.Actual}).Error
}
