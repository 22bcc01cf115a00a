// internal/services/billing_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type BillingService struct {
	db     *gorm.DB
	config *config.Config
}

func NewBillingService(db *gorm.DB, cfg *config.Config) *BillingService {
	stripe.Key = cfg.Billing.StripeSecretKey

	return &BillingService{db: db, config: cfg}
}

type UpgradeRequest struct {
	Plan models.SubscriptionPlan `json:"plan" validate:"required"`
}

type UpgradeResponse struct {
	ClientSecret string                  `json:"client_secret"`
	PaymentID    string                  `json:"payment_id"`
	Plan         models.SubscriptionPlan `json:"plan"`
	Amount       float64                 `json:"amount"`
	Currency     string                  `json:"currency"`
}

func (s *BillingService) GetSubscription(userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Every account starts on the free plan; create the row lazily.
		sub = models.Subscription{
			UserID: userID,
			Plan:   models.PlanFree,
			Status: models.SubscriptionStatusActive,
		}
		if err := s.db.Create(&sub).Error; err != nil {
			return nil, apperrors.Internal("failed to create subscription", err)
		}
		return &sub, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load subscription", err)
	}
	return &sub, nil
}

// CreateUpgradeIntent creates a Stripe PaymentIntent for a plan upgrade. The
// subscription itself is only activated once ConfirmUpgrade sees the intent
// succeed; capture happens on the client.
func (s *BillingService) CreateUpgradeIntent(userID uuid.UUID, req *UpgradeRequest) (*UpgradeResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}

	amount, err := s.planPrice(req.Plan)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(s.config.Billing.Currency),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("plan", string(req.Plan))

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, apperrors.Internal("failed to create payment intent", err)
	}

	return &UpgradeResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Plan:         req.Plan,
		Amount:       amount,
		Currency:     s.config.Billing.Currency,
	}, nil
}

type ConfirmUpgradeRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func (s *BillingService) ConfirmUpgrade(userID uuid.UUID, req *ConfirmUpgradeRequest) (*models.Subscription, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.InvalidRequest("validation failed: %v", err)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, apperrors.InvalidRequest("payment intent not found")
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, apperrors.InvalidRequest("payment has not succeeded")
	}
	if pi.Metadata["user_id"] != userID.String() {
		return nil, apperrors.Forbidden("payment belongs to another account")
	}

	plan := models.SubscriptionPlan(pi.Metadata["plan"])
	if _, err := s.planPrice(plan); err != nil {
		return nil, err
	}

	sub, err := s.GetSubscription(userID)
	if err != nil {
		return nil, err
	}

	periodEnd := time.Now().AddDate(0, 1, 0)
	sub.Plan = plan
	sub.Status = models.SubscriptionStatusActive
	sub.CurrentPeriodEnd = &periodEnd

	if err := s.db.Save(sub).Error; err != nil {
		return nil, apperrors.Internal("failed to update subscription", err)
	}
	return sub, nil
}

func (s *BillingService) CancelSubscription(userID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.GetSubscription(userID)
	if err != nil {
		return nil, err
	}
	if sub.Plan == models.PlanFree {
		return nil, apperrors.InvalidRequest("the free plan cannot be canceled")
	}

	// Paid access runs to the end of the current period.
	sub.Status = models.SubscriptionStatusCanceled
	if err := s.db.Save(sub).Error; err != nil {
		return nil, apperrors.Internal("failed to cancel subscription", err)
	}
	return sub, nil
}

func (s *BillingService) planPrice(plan models.SubscriptionPlan) (float64, error) {
	switch plan {
	case models.PlanPro:
		return s.config.Billing.ProPriceMonthly, nil
	case models.PlanEnterprise:
		return s.config.Billing.EnterprisePriceMonthly, nil
	default:
		return 0, apperrors.InvalidRequest("unknown plan: %s", plan)
	}
}
