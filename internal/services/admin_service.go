// internal/services/admin_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type AdminService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewAdminService(db *gorm.DB, notifications *NotificationService) *AdminService {
	return &AdminService{
		db:            db,
		notifications: notifications,
	}
}

type AdminDashboardStats struct {
	TotalUsers            int64   `json:"total_users"`
	ActiveUsers           int64   `json:"active_users"`
	NewUsersThisMonth     int64   `json:"new_users_this_month"`
	TotalOffers           int64   `json:"total_offers"`
	ActiveOffers          int64   `json:"active_offers"`
	TotalDemands          int64   `json:"total_demands"`
	ActiveDemands         int64   `json:"active_demands"`
	TotalNegotiations     int64   `json:"total_negotiations"`
	OpenNegotiations      int64   `json:"open_negotiations"`
	AcceptedNegotiations  int64   `json:"accepted_negotiations"`
	CompletedNegotiations int64   `json:"completed_negotiations"`
	PaidSubscriptions     int64   `json:"paid_subscriptions"`
	UserGrowth            float64 `json:"user_growth"`
	NegotiationGrowth     float64 `json:"negotiation_growth"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	UserType      *models.UserType   `json:"user_type,omitempty"`
	Status        *models.UserStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time         `json:"created_after,omitempty"`
	CreatedBefore *time.Time         `json:"created_before,omitempty"`
}

type AdminNegotiationFilter struct {
	utils.PaginationParams
	Status        *models.NegotiationStatus `json:"status,omitempty"`
	ProposerID    *uuid.UUID                `json:"proposer_id,omitempty"`
	OwnerID       *uuid.UUID                `json:"owner_id,omitempty"`
	CreatedAfter  *time.Time                `json:"created_after,omitempty"`
	CreatedBefore *time.Time                `json:"created_before,omitempty"`
}

type AuditLogFilter struct {
	utils.PaginationParams
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Action       string     `json:"action,omitempty"`
	ResourceType string     `json:"resource_type,omitempty"`
}

func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers)
	s.db.Model(&models.User{}).Where("created_at >= ?", monthStart).Count(&stats.NewUsersThisMonth)

	s.db.Model(&models.Offer{}).Count(&stats.TotalOffers)
	s.db.Model(&models.Offer{}).Where("status = ?", models.ListingStatusActive).Count(&stats.ActiveOffers)
	s.db.Model(&models.Demand{}).Count(&stats.TotalDemands)
	s.db.Model(&models.Demand{}).Where("status = ?", models.ListingStatusActive).Count(&stats.ActiveDemands)

	s.db.Model(&models.Negotiation{}).Count(&stats.TotalNegotiations)
	s.db.Model(&models.Negotiation{}).
		Where("status IN ?", []models.NegotiationStatus{models.NegotiationStatusPending, models.NegotiationStatusCounterOffer}).
		Count(&stats.OpenNegotiations)
	s.db.Model(&models.Negotiation{}).
		Where("status = ?", models.NegotiationStatusAccepted).Count(&stats.AcceptedNegotiations)
	s.db.Model(&models.Negotiation{}).
		Where("status = ?", models.NegotiationStatusCompleted).Count(&stats.CompletedNegotiations)

	s.db.Model(&models.Subscription{}).
		Where("plan <> ? AND status = ?", models.PlanFree, models.SubscriptionStatusActive).
		Count(&stats.PaidSubscriptions)

	var lastMonthUsers, thisMonthNegotiations, lastMonthNegotiations int64
	s.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).
		Count(&lastMonthUsers)
	s.db.Model(&models.Negotiation{}).Where("created_at >= ?", monthStart).Count(&thisMonthNegotiations)
	s.db.Model(&models.Negotiation{}).
		Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).
		Count(&lastMonthNegotiations)

	if lastMonthUsers > 0 {
		stats.UserGrowth = float64(stats.NewUsersThisMonth-lastMonthUsers) / float64(lastMonthUsers) * 100
	}
	if lastMonthNegotiations > 0 {
		stats.NegotiationGrowth = float64(thisMonthNegotiations-lastMonthNegotiations) / float64(lastMonthNegotiations) * 100
	}

	return stats, nil
}

func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if filter.UserType != nil {
		query = query.Where("user_type = ?", *filter.UserType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count users", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "username", "email", "user_type", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch users", err)
	}

	return users, total, nil
}

func (s *AdminService) UpdateUserStatus(userID uuid.UUID, status models.UserStatus, adminID uuid.UUID, reason string) error {
	if status != models.UserStatusActive && status != models.UserStatusSuspended && status != models.UserStatusBanned {
		return apperrors.InvalidRequest("invalid user status: %s", status)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user")
		}
		return apperrors.Internal("failed to load user", err)
	}

	if user.UserType == models.UserTypeAdmin && user.ID != adminID {
		return apperrors.Forbidden("cannot modify another admin account")
	}

	oldStatus := user.Status
	user.Status = status
	if err := s.db.Save(&user).Error; err != nil {
		return apperrors.Internal("failed to update user status", err)
	}

	go s.recordAudit(adminID, "UPDATE_USER_STATUS", "user", &userID, models.JSONB{
		"old_status": oldStatus,
		"new_status": status,
		"reason":     reason,
	})

	title := "Account status changed"
	message := "Your account is now " + string(status) + "."
	if reason != "" {
		message += " Reason: " + reason
	}
	s.notifications.Notify(user.ID, models.NotificationSystem, title, message, models.JSONB{
		"status": string(status),
	})

	return nil
}

// GetNegotiations is the unscoped view: it sees every thread on the platform.
func (s *AdminService) GetNegotiations(filter AdminNegotiationFilter) ([]models.Negotiation, int64, error) {
	query := s.db.Model(&models.Negotiation{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProposerID != nil {
		query = query.Where("proposer_id = ?", *filter.ProposerID)
	}
	if filter.OwnerID != nil {
		query = query.Where("listing_owner_id = ?", *filter.OwnerID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count negotiations", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "price"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var negotiations []models.Negotiation
	if err := query.Preload("Proposer").Preload("ListingOwner").Find(&negotiations).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch negotiations", err)
	}

	return negotiations, total, nil
}

func (s *AdminService) GetAuditLogs(filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count audit logs", err)
	}

	allowedSortFields := []string{"created_at", "action", "resource_type"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var logs []models.AuditLog
	if err := query.Preload("User").Find(&logs).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch audit logs", err)
	}

	return logs, total, nil
}

func (s *AdminService) recordAudit(userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, newValues models.JSONB) {
	entry := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		NewValues:    newValues,
	}
	if err := s.db.Create(entry).Error; err != nil {
		logrus.WithError(err).Warn("failed to record audit log entry")
	}
}
