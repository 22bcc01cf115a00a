// internal/services/notification_service.go
package services

import (
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

// Dispatcher is the fire-and-forget contract the negotiation engine invokes
// after a successful mutation. Implementations must never let a delivery
// failure propagate into the mutation path.
type Dispatcher interface {
	Notify(recipientID uuid.UUID, notifType models.NotificationType, title, message string, payload models.JSONB)
}

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Notify persists the in-app notification and, when SMTP is configured,
// emails the recipient. Errors are logged and swallowed.
func (s *NotificationService) Notify(recipientID uuid.UUID, notifType models.NotificationType, title, message string, payload models.JSONB) {
	notification := &models.Notification{
		UserID:  recipientID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Payload: payload,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("recipient", recipientID).Error("Failed to persist notification")
		return
	}

	if s.config == nil || s.config.Email.SMTPHost == "" {
		return
	}

	var recipient models.User
	if err := s.db.First(&recipient, "id = ?", recipientID).Error; err != nil {
		logrus.WithError(err).WithField("recipient", recipientID).Warn("Notification recipient not found for email delivery")
		return
	}

	if err := s.sendEmail(recipient.Email, title, message); err != nil {
		logrus.WithError(err).WithField("recipient", recipient.Email).Warn("Failed to send notification email")
	}
}

// ListNotifications returns the recipient's notifications, newest first.
func (s *NotificationService) ListNotifications(userID uuid.UUID, unreadOnly bool, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count notifications", err)
	}

	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch notifications", err)
	}

	return notifications, total, nil
}

// MarkRead flags a notification as read. Only the recipient may do so.
func (s *NotificationService) MarkRead(id, userID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("notification")
		}
		return nil, apperrors.Internal("failed to load notification", err)
	}

	if notification.UserID != userID {
		return nil, apperrors.Forbidden("not the recipient of this notification")
	}

	if !notification.IsRead {
		now := time.Now()
		updates := map[string]interface{}{"is_read": true, "read_at": &now}
		if err := s.db.Model(&notification).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("failed to update notification", err)
		}
	}

	return &notification, nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	now := time.Now()
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error; err != nil {
		return apperrors.Internal("failed to mark notifications read", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, apperrors.Internal("failed to count unread notifications", err)
	}
	return count, nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s <%s>\r\nSubject: %s\r\n\r\n%s",
		to, s.config.Email.FromName, s.config.Email.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}
