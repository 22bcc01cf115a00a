// internal/handlers/budget.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/internal/i18n"
	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type BudgetHandler struct {
	budgetService *services.BudgetService
}

func NewBudgetHandler(budgetService *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// GET /budgets?farm_id=...
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	farmID, err := uuid.Parse(c.Query("farm_id"))
	if err != nil {
		utils.BadRequestResponse(c, "farm_id query parameter is required", nil)
		return
	}

	params := utils.GetPaginationParams(c)
	budgets, total, err := h.budgetService.ListBudgets(farmID, actor, params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(budgets, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /budgets
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	budget, err := h.budgetService.CreateBudget(actor, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBudgetCreated),
		"budget":  budget,
	})
}

// GET /budgets/:id
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	budget, err := h.budgetService.GetBudget(id, actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"budget": budget})
}

// POST /budgets/:id/entries
func (h *BudgetHandler) AddEntry(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	budgetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateBudgetEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	entry, err := h.budgetService.AddEntry(budgetID, actor, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"entry": entry})
}

// DELETE /budgets/:id/entries/:entryId
func (h *BudgetHandler) DeleteEntry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	budgetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "entryId")
	if !ok {
		return
	}

	if err := h.budgetService.DeleteEntry(budgetID, entryID, actor); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Entry deleted"})
}
