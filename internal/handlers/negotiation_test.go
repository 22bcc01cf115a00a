// internal/handlers/negotiation_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrilink/agrilink-backend/internal/apperrors"
	"github.com/agrilink/agrilink-backend/internal/middleware"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type stubListingStore struct {
	listings map[uuid.UUID]*models.Listing
}

func (s *stubListingStore) GetListing(kind models.ListingKind, id uuid.UUID) (*models.Listing, error) {
	if l, ok := s.listings[id]; ok && l.Kind == kind {
		return l, nil
	}
	return nil, apperrors.NotFound(string(kind))
}

func (s *stubListingStore) IsOwner(listing *models.Listing, userID uuid.UUID) bool {
	return listing != nil && listing.OwnerID == userID
}

type NegotiationHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	store  *stubListingStore

	seller      *models.User
	buyer       *models.User
	sellerToken string
	buyerToken  string
}

func (s *NegotiationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(db.AutoMigrate(&models.User{}, &models.Negotiation{}, &models.NegotiationEvent{}))
	s.db = db

	s.seller, s.sellerToken = s.createUser("seller", models.UserTypeFarmer)
	s.buyer, s.buyerToken = s.createUser("buyer", models.UserTypeBuyer)

	s.store = &stubListingStore{listings: map[uuid.UUID]*models.Listing{}}

	negotiationService := services.NewNegotiationService(db, s.store, nil)
	handler := NewNegotiationHandler(negotiationService)

	s.router = gin.New()
	negotiations := s.router.Group("/v1/negotiations")
	negotiations.Use(middleware.AuthRequired())
	{
		negotiations.POST("", handler.CreateNegotiation)
		negotiations.GET("", handler.GetNegotiations)
		negotiations.GET("/:id", handler.GetNegotiation)
		negotiations.PUT("/:id", handler.UpdateNegotiation)
		negotiations.DELETE("/:id", handler.DeleteNegotiation)
	}
}

func (s *NegotiationHandlerTestSuite) createUser(name string, userType models.UserType) (*models.User, string) {
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		UserType: userType,
	}
	s.Require().NoError(user.SetPassword("Secret123!"))
	s.Require().NoError(s.db.Create(user).Error)

	token, err := utils.GenerateJWT(user.ID, user.Username, string(user.UserType), 1)
	s.Require().NoError(err)
	return user, token
}

func (s *NegotiationHandlerTestSuite) addOffer(owner *models.User, title string) *models.Listing {
	l := &models.Listing{
		Kind:     models.ListingKindOffer,
		ID:       uuid.New(),
		OwnerID:  owner.ID,
		Title:    title,
		Category: models.CategoryCrops,
		Price:    100,
		Quantity: 10,
		Unit:     "kg",
		Status:   models.ListingStatusActive,
	}
	s.store.listings[l.ID] = l
	return l
}

func (s *NegotiationHandlerTestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *NegotiationHandlerTestSuite) parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	s.Require().NoError(err)
	return t
}

func (s *NegotiationHandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *NegotiationHandlerTestSuite) TestCreateNegotiation() {
	offer := s.addOffer(s.seller, "Wheat lot")

	w := s.request(http.MethodPost, "/v1/negotiations", s.buyerToken, map[string]interface{}{
		"offer_id": offer.ID.String(),
		"price":    85,
		"quantity": 5,
		"message":  "Would you take 85?",
	})

	s.Equal(http.StatusCreated, w.Code)
	resp := s.decode(w)
	s.True(resp["success"].(bool))

	data := resp["data"].(map[string]interface{})
	negotiation := data["negotiation"].(map[string]interface{})
	s.Equal("PENDING", negotiation["status"])
	s.Equal(s.buyer.ID.String(), negotiation["proposer_id"])
}

func (s *NegotiationHandlerTestSuite) TestCreateRequiresAuth() {
	offer := s.addOffer(s.seller, "Wheat lot")

	w := s.request(http.MethodPost, "/v1/negotiations", "", map[string]interface{}{
		"offer_id": offer.ID.String(),
		"price":    85,
		"quantity": 5,
	})

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *NegotiationHandlerTestSuite) TestCreateRejectsBothRefs() {
	offer := s.addOffer(s.seller, "Wheat lot")

	w := s.request(http.MethodPost, "/v1/negotiations", s.buyerToken, map[string]interface{}{
		"offer_id":  offer.ID.String(),
		"demand_id": uuid.New().String(),
		"price":     85,
		"quantity":  5,
	})

	s.Equal(http.StatusBadRequest, w.Code)
	resp := s.decode(w)
	s.False(resp["success"].(bool))
}

func (s *NegotiationHandlerTestSuite) TestGetUnknownNegotiation() {
	w := s.request(http.MethodGet, "/v1/negotiations/"+uuid.New().String(), s.buyerToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *NegotiationHandlerTestSuite) TestStrangerCannotView() {
	offer := s.addOffer(s.seller, "Wheat lot")
	w := s.request(http.MethodPost, "/v1/negotiations", s.buyerToken, map[string]interface{}{
		"offer_id": offer.ID.String(),
		"price":    85,
		"quantity": 5,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	data := s.decode(w)["data"].(map[string]interface{})
	id := data["negotiation"].(map[string]interface{})["id"].(string)

	_, strangerToken := s.createUser("stranger", models.UserTypeBuyer)
	w = s.request(http.MethodGet, "/v1/negotiations/"+id, strangerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *NegotiationHandlerTestSuite) TestCounterOfferOverHTTP() {
	offer := s.addOffer(s.seller, "Wheat lot")
	w := s.request(http.MethodPost, "/v1/negotiations", s.buyerToken, map[string]interface{}{
		"offer_id": offer.ID.String(),
		"price":    85,
		"quantity": 5,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	data := s.decode(w)["data"].(map[string]interface{})
	id := data["negotiation"].(map[string]interface{})["id"].(string)

	w = s.request(http.MethodPut, "/v1/negotiations/"+id, s.sellerToken, map[string]interface{}{
		"status": "ACCEPTED",
		"price":  95,
	})
	s.Require().Equal(http.StatusOK, w.Code)
	data = s.decode(w)["data"].(map[string]interface{})
	negotiation := data["negotiation"].(map[string]interface{})
	s.Equal("COUNTER_OFFER", negotiation["status"])
	s.Equal(95.0, negotiation["price"])
}

func (s *NegotiationHandlerTestSuite) TestListPagination() {
	for i := 0; i < 45; i++ {
		offer := s.addOffer(s.seller, fmt.Sprintf("Lot %d", i))
		w := s.request(http.MethodPost, "/v1/negotiations", s.buyerToken, map[string]interface{}{
			"offer_id": offer.ID.String(),
			"price":    50 + i,
			"quantity": 1,
		})
		s.Require().Equal(http.StatusCreated, w.Code)
	}

	w := s.request(http.MethodGet, "/v1/negotiations?page=1&limit=20", s.buyerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	resp := s.decode(w)

	meta := resp["meta"].(map[string]interface{})
	pagination := meta["pagination"].(map[string]interface{})
	s.Equal(float64(45), pagination["total"])
	s.Equal(float64(3), pagination["pages"])
	s.Equal(float64(20), pagination["limit"])
	s.Equal("45", w.Header().Get("X-Total-Count"))

	items := resp["data"].([]interface{})
	s.Require().Len(items, 20)

	// Most recently updated thread first, then strictly descending.
	s.Equal(float64(94), items[0].(map[string]interface{})["price"])
	prev := s.parseTime(items[0].(map[string]interface{})["updated_at"].(string))
	for _, item := range items[1:] {
		cur := s.parseTime(item.(map[string]interface{})["updated_at"].(string))
		s.False(cur.After(prev), "updated_at must be descending")
		prev = cur
	}

	w = s.request(http.MethodGet, "/v1/negotiations?page=3&limit=20", s.buyerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	resp = s.decode(w)
	s.Len(resp["data"].([]interface{}), 5)

	// The seller sees the same threads from the other side.
	w = s.request(http.MethodGet, "/v1/negotiations?limit=100", s.sellerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	resp = s.decode(w)
	s.Len(resp["data"].([]interface{}), 45)
}

func (s *NegotiationHandlerTestSuite) TestListStatusFilterRejectsUnknown() {
	w := s.request(http.MethodGet, "/v1/negotiations?status=HAGGLING", s.buyerToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *NegotiationHandlerTestSuite) TestDeleteByProposer() {
	offer := s.addOffer(s.seller, "Wheat lot")
	w := s.request(http.MethodPost, "/v1/negotiations", s.buyerToken, map[string]interface{}{
		"offer_id": offer.ID.String(),
		"price":    85,
		"quantity": 5,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	data := s.decode(w)["data"].(map[string]interface{})
	id := data["negotiation"].(map[string]interface{})["id"].(string)

	// The listing owner may not delete the thread.
	w = s.request(http.MethodDelete, "/v1/negotiations/"+id, s.sellerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodDelete, "/v1/negotiations/"+id, s.buyerToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/v1/negotiations/"+id, s.buyerToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestNegotiationHandlerSuite(t *testing.T) {
	suite.Run(t, new(NegotiationHandlerTestSuite))
}
