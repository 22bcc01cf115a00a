// internal/services/negotiation_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/models"
)

type fakeListingStore struct {
	listings map[models.ListingKind]map[uuid.UUID]*models.Listing
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{
		listings: map[models.ListingKind]map[uuid.UUID]*models.Listing{
			models.ListingKindOffer:  {},
			models.ListingKindDemand: {},
		},
	}
}

func (f *fakeListingStore) add(l *models.Listing) *models.Listing {
	f.listings[l.Kind][l.ID] = l
	return l
}

func (f *fakeListingStore) GetListing(kind models.ListingKind, id uuid.UUID) (*models.Listing, error) {
	if l, ok := f.listings[kind][id]; ok {
		return l, nil
	}
	return nil, apperrors.NotFound(string(kind))
}

func (f *fakeListingStore) IsOwner(listing *models.Listing, userID uuid.UUID) bool {
	return listing != nil && listing.OwnerID == userID
}

type sentNotification struct {
	Recipient uuid.UUID
	Type      models.NotificationType
	Title     string
	Message   string
	Payload   models.JSONB
}

type recorderDispatcher struct {
	sent []sentNotification
}

func (r *recorderDispatcher) Notify(recipientID uuid.UUID, notifType models.NotificationType, title, message string, payload models.JSONB) {
	r.sent = append(r.sent, sentNotification{recipientID, notifType, title, message, payload})
}

type NegotiationServiceTestSuite struct {
	suite.Suite
	db         *gorm.DB
	store      *fakeListingStore
	dispatcher *recorderDispatcher
	svc        *NegotiationService

	seller Actor
	buyer  Actor
	admin  Actor
	offer  *models.Listing
}

func (s *NegotiationServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(&models.User{}, &models.Negotiation{}, &models.NegotiationEvent{}))
	s.db = db

	s.seller = s.createUser("seller", models.UserTypeFarmer)
	s.buyer = s.createUser("buyer", models.UserTypeBuyer)
	s.admin = s.createUser("admin", models.UserTypeAdmin)

	s.store = newFakeListingStore()
	s.offer = s.store.add(&models.Listing{
		Kind:     models.ListingKindOffer,
		ID:       uuid.New(),
		OwnerID:  s.seller.ID,
		Title:    "Organic wheat",
		Category: models.CategoryCrops,
		Price:    250,
		Quantity: 100,
		Unit:     "kg",
		Status:   models.ListingStatusActive,
	})

	s.dispatcher = &recorderDispatcher{}
	s.svc = NewNegotiationService(db, s.store, s.dispatcher)
}

func (s *NegotiationServiceTestSuite) createUser(name string, userType models.UserType) Actor {
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		UserType: userType,
	}
	s.Require().NoError(user.SetPassword("Secret123!"))
	s.Require().NoError(s.db.Create(user).Error)
	return Actor{ID: user.ID, Role: userType}
}

func (s *NegotiationServiceTestSuite) openNegotiation(price, quantity float64) *NegotiationView {
	view, err := s.svc.Create(s.buyer, &CreateNegotiationRequest{
		OfferID:  &s.offer.ID,
		Price:    price,
		Quantity: quantity,
		Message:  "Interested",
	})
	s.Require().NoError(err)
	return view
}

func ptr[T any](v T) *T { return &v }

func (s *NegotiationServiceTestSuite) TestCreateRequiresExactlyOneListingRef() {
	demandID := uuid.New()

	_, err := s.svc.Create(s.buyer, &CreateNegotiationRequest{Price: 10, Quantity: 5})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))

	_, err = s.svc.Create(s.buyer, &CreateNegotiationRequest{
		OfferID: &s.offer.ID, DemandID: &demandID, Price: 10, Quantity: 5,
	})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestCreateRejectsUnknownListing() {
	missing := uuid.New()
	_, err := s.svc.Create(s.buyer, &CreateNegotiationRequest{OfferID: &missing, Price: 10, Quantity: 5})
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestCreateRejectsOwnListing() {
	_, err := s.svc.Create(s.seller, &CreateNegotiationRequest{OfferID: &s.offer.ID, Price: 10, Quantity: 5})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestCreateRejectsInactiveListing() {
	closed := s.store.add(&models.Listing{
		Kind: models.ListingKindOffer, ID: uuid.New(), OwnerID: s.seller.ID,
		Title: "Closed lot", Status: models.ListingStatusClosed,
	})

	_, err := s.svc.Create(s.buyer, &CreateNegotiationRequest{OfferID: &closed.ID, Price: 10, Quantity: 5})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestCreateStartsPendingAndNotifiesOwner() {
	view := s.openNegotiation(200, 50)

	s.Equal(models.NegotiationStatusPending, view.Status)
	s.Equal(s.buyer.ID, view.ProposerID)
	s.Equal(s.seller.ID, view.ListingOwnerID)
	s.Require().NotNil(view.Listing)
	s.Equal("Organic wheat", view.Listing.Title)

	s.Require().Len(s.dispatcher.sent, 1)
	s.Equal(s.seller.ID, s.dispatcher.sent[0].Recipient)
	s.Equal(models.NotificationOfferInterest, s.dispatcher.sent[0].Type)

	// Opening proposal appears in the messages projection.
	s.Require().Len(view.Messages, 1)
	s.Equal("counter_offer", view.Messages[0].Type)
	s.Equal(float64(200), view.Messages[0].Price)
}

func (s *NegotiationServiceTestSuite) TestCreateWithZeroTermsOpensDiscussion() {
	view := s.openNegotiation(0, 0)

	s.Equal(models.NegotiationStatusPending, view.Status)
	s.Require().Len(view.Messages, 1)
	s.Equal("message", view.Messages[0].Type)
}

func (s *NegotiationServiceTestSuite) TestDemandNegotiationNotifiesAsDemandMatch() {
	demand := s.store.add(&models.Listing{
		Kind: models.ListingKindDemand, ID: uuid.New(), OwnerID: s.buyer.ID,
		Title: "Need maize", Status: models.ListingStatusActive, Unit: "t",
	})

	_, err := s.svc.Create(s.seller, &CreateNegotiationRequest{DemandID: &demand.ID, Price: 90, Quantity: 3})
	s.Require().NoError(err)

	s.Require().Len(s.dispatcher.sent, 1)
	s.Equal(s.buyer.ID, s.dispatcher.sent[0].Recipient)
	s.Equal(models.NotificationDemandMatch, s.dispatcher.sent[0].Type)
}

func (s *NegotiationServiceTestSuite) TestNewTermsForceCounterOffer() {
	view := s.openNegotiation(200, 50)

	// Even an explicit ACCEPTED alongside new terms must land on COUNTER_OFFER.
	updated, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{
		Status: ptr(models.NegotiationStatusAccepted),
		Price:  ptr(230.0),
	})
	s.Require().NoError(err)
	s.Equal(models.NegotiationStatusCounterOffer, updated.Status)
	s.Equal(230.0, updated.Price)
	s.Equal(50.0, updated.Quantity, "omitted quantity is unchanged")
}

func (s *NegotiationServiceTestSuite) TestUpdateProjectionIncludesNewEvent() {
	view := s.openNegotiation(200, 50)

	updated, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Price: ptr(230.0)})
	s.Require().NoError(err)

	// The response reflects the event this very update appended.
	s.Require().Len(updated.Messages, 2)
	last := updated.Messages[len(updated.Messages)-1]
	s.Equal("counter_offer", last.Type)
	s.Equal(230.0, last.Price)
}

func (s *NegotiationServiceTestSuite) TestNewTermsMustBePositive() {
	view := s.openNegotiation(200, 50)

	_, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Price: ptr(0.0)})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))

	_, err = s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Quantity: ptr(-1.0)})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestCompletedCannotReopen() {
	view := s.openNegotiation(200, 50)

	_, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusAccepted)})
	s.Require().NoError(err)
	_, err = s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusCompleted)})
	s.Require().NoError(err)

	_, err = s.svc.Update(s.buyer, view.ID, &UpdateNegotiationRequest{Price: ptr(180.0)})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))

	_, err = s.svc.Update(s.buyer, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusPending)})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestStatusTransitionTable() {
	cases := []struct {
		from, to models.NegotiationStatus
		ok       bool
	}{
		{models.NegotiationStatusPending, models.NegotiationStatusAccepted, true},
		{models.NegotiationStatusPending, models.NegotiationStatusRejected, true},
		{models.NegotiationStatusPending, models.NegotiationStatusCounterOffer, true},
		{models.NegotiationStatusPending, models.NegotiationStatusCompleted, false},
		{models.NegotiationStatusCounterOffer, models.NegotiationStatusAccepted, true},
		{models.NegotiationStatusCounterOffer, models.NegotiationStatusCompleted, true},
		{models.NegotiationStatusAccepted, models.NegotiationStatusCompleted, true},
		{models.NegotiationStatusAccepted, models.NegotiationStatusRejected, false},
		{models.NegotiationStatusRejected, models.NegotiationStatusCompleted, true},
		{models.NegotiationStatusRejected, models.NegotiationStatusPending, false},
		{models.NegotiationStatusCompleted, models.NegotiationStatusAccepted, false},
	}

	for _, tc := range cases {
		s.Equal(tc.ok, canTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func (s *NegotiationServiceTestSuite) TestRepeatingStatusIsIdempotent() {
	view := s.openNegotiation(200, 50)

	_, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusAccepted)})
	s.Require().NoError(err)

	before := s.eventCount(view.ID)
	updated, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusAccepted)})
	s.Require().NoError(err)
	s.Equal(models.NegotiationStatusAccepted, updated.Status)
	s.Equal(before, s.eventCount(view.ID), "no event is appended for a no-op")
}

func (s *NegotiationServiceTestSuite) TestUpdateRejectsUnknownStatus() {
	view := s.openNegotiation(200, 50)

	bogus := models.NegotiationStatus("HAGGLING")
	_, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Status: &bogus})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestUpdateRequiresParticipant() {
	view := s.openNegotiation(200, 50)

	_, err := s.svc.Update(s.admin, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusAccepted)})
	s.Equal(apperrors.KindForbidden, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestHaggleToCompletion() {
	view := s.openNegotiation(200, 50)

	// Seller counters, buyer counters back, seller accepts, deal completes.
	_, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Price: ptr(240.0), Message: "Best I can do"})
	s.Require().NoError(err)

	_, err = s.svc.Update(s.buyer, view.ID, &UpdateNegotiationRequest{Price: ptr(220.0)})
	s.Require().NoError(err)

	_, err = s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusAccepted)})
	s.Require().NoError(err)

	final, err := s.svc.Update(s.buyer, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusCompleted)})
	s.Require().NoError(err)

	s.Equal(models.NegotiationStatusCompleted, final.Status)
	s.Equal(220.0, final.Price)
	// Opening proposal plus two counters appear as messages.
	s.Len(final.Messages, 3)

	// Each step notified the counterparty.
	s.GreaterOrEqual(len(s.dispatcher.sent), 5)
}

func (s *NegotiationServiceTestSuite) TestMessageOnlyUpdate() {
	view := s.openNegotiation(200, 50)
	s.dispatcher.sent = nil

	updated, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Message: "Can you collect on Friday?"})
	s.Require().NoError(err)
	s.Equal(models.NegotiationStatusPending, updated.Status, "message does not change status")

	s.Require().Len(s.dispatcher.sent, 1)
	s.Equal(s.buyer.ID, s.dispatcher.sent[0].Recipient)
	s.Equal(models.NotificationNegotiationMessage, s.dispatcher.sent[0].Type)
}

func (s *NegotiationServiceTestSuite) TestGetVisibility() {
	view := s.openNegotiation(200, 50)

	_, err := s.svc.Get(s.buyer, view.ID)
	s.NoError(err)
	_, err = s.svc.Get(s.seller, view.ID)
	s.NoError(err)
	_, err = s.svc.Get(s.admin, view.ID)
	s.NoError(err)

	stranger := s.createUser("stranger", models.UserTypeBuyer)
	_, err = s.svc.Get(stranger, view.ID)
	s.Equal(apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = s.svc.Get(s.buyer, uuid.New())
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestListScoping() {
	s.openNegotiation(200, 50)

	// A second thread between two other users.
	otherSeller := s.createUser("othseller", models.UserTypeFarmer)
	otherBuyer := s.createUser("othbuyer", models.UserTypeBuyer)
	otherOffer := s.store.add(&models.Listing{
		Kind: models.ListingKindOffer, ID: uuid.New(), OwnerID: otherSeller.ID,
		Title: "Barley", Status: models.ListingStatusActive,
	})
	_, err := s.svc.Create(otherBuyer, &CreateNegotiationRequest{OfferID: &otherOffer.ID, Price: 80, Quantity: 10})
	s.Require().NoError(err)

	views, total, err := s.svc.List(s.buyer, NegotiationListParams{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Len(views, 1)

	views, total, err = s.svc.List(otherSeller, NegotiationListParams{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Len(views, 1)

	_, total, err = s.svc.List(s.admin, NegotiationListParams{})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
}

func (s *NegotiationServiceTestSuite) TestListZeroParamsReturnFirstPage() {
	s.openNegotiation(200, 50)
	s.openNegotiation(100, 10)

	views, total, err := s.svc.List(s.buyer, NegotiationListParams{})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(views, 2, "zero-value params mean page 1, not LIMIT 0")
}

func (s *NegotiationServiceTestSuite) TestListOrdersByLastUpdate() {
	first := s.openNegotiation(200, 50)
	s.openNegotiation(100, 10)

	// Touching the older thread moves it to the front.
	_, err := s.svc.Update(s.seller, first.ID, &UpdateNegotiationRequest{Price: ptr(210.0)})
	s.Require().NoError(err)

	views, _, err := s.svc.List(s.buyer, NegotiationListParams{})
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal(first.ID, views[0].ID)
	s.True(views[0].UpdatedAt.After(views[1].UpdatedAt) || views[0].UpdatedAt.Equal(views[1].UpdatedAt))
}

func (s *NegotiationServiceTestSuite) TestListStatusFilter() {
	view := s.openNegotiation(200, 50)
	_, err := s.svc.Update(s.seller, view.ID, &UpdateNegotiationRequest{Status: ptr(models.NegotiationStatusRejected)})
	s.Require().NoError(err)
	s.openNegotiation(100, 10)

	_, total, err := s.svc.List(s.buyer, NegotiationListParams{Status: ptr(models.NegotiationStatusPending)})
	s.Require().NoError(err)
	s.Equal(int64(1), total)

	bogus := models.NegotiationStatus("HAGGLING")
	_, _, err = s.svc.List(s.buyer, NegotiationListParams{Status: &bogus})
	s.Equal(apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestDeletePermissions() {
	view := s.openNegotiation(200, 50)

	err := s.svc.Delete(s.seller, view.ID)
	s.Equal(apperrors.KindForbidden, apperrors.KindOf(err), "listing owner may not delete")

	s.Require().NoError(s.svc.Delete(s.buyer, view.ID))
	s.Equal(int64(0), s.eventCount(view.ID), "event history is removed with the thread")

	_, err = s.svc.Get(s.buyer, view.ID)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func (s *NegotiationServiceTestSuite) TestAdminDelete() {
	view := s.openNegotiation(200, 50)
	s.Require().NoError(s.svc.Delete(s.admin, view.ID))
}

func (s *NegotiationServiceTestSuite) eventCount(negotiationID uuid.UUID) int64 {
	var count int64
	s.db.Model(&models.NegotiationEvent{}).Where("negotiation_id = ?", negotiationID).Count(&count)
	return count
}

func TestNegotiationServiceSuite(t *testing.T) {
	suite.Run(t, new(NegotiationServiceTestSuite))
}
