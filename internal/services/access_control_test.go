// internal/services/access_control_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/agrilink/agrilink-backend/internal/models"
)

func TestCanCreateNegotiation(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	listing := &models.Listing{ID: uuid.New(), OwnerID: owner, Status: models.ListingStatusActive}

	assert.True(t, CanCreateNegotiation(other, listing))
	assert.False(t, CanCreateNegotiation(owner, listing), "owner cannot negotiate own listing")
	assert.False(t, CanCreateNegotiation(other, nil))
}

func TestNegotiationVisibility(t *testing.T) {
	proposer := uuid.New()
	owner := uuid.New()
	stranger := uuid.New()
	admin := uuid.New()

	n := &models.Negotiation{ProposerID: proposer, ListingOwnerID: owner}

	cases := []struct {
		name    string
		actor   Actor
		canView bool
	}{
		{"proposer", Actor{ID: proposer, Role: models.UserTypeFarmer}, true},
		{"listing owner", Actor{ID: owner, Role: models.UserTypeBuyer}, true},
		{"admin", Actor{ID: admin, Role: models.UserTypeAdmin}, true},
		{"stranger", Actor{ID: stranger, Role: models.UserTypeBuyer}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.canView, CanViewNegotiation(tc.actor, n))
		})
	}

	assert.False(t, CanViewNegotiation(Actor{ID: admin, Role: models.UserTypeAdmin}, nil))
}

func TestCanMutateNegotiation(t *testing.T) {
	proposer := uuid.New()
	owner := uuid.New()
	admin := uuid.New()

	n := &models.Negotiation{ProposerID: proposer, ListingOwnerID: owner}

	assert.True(t, CanMutateNegotiation(proposer, n))
	assert.True(t, CanMutateNegotiation(owner, n))
	// Mutation requires being a party; role alone is not enough.
	assert.False(t, CanMutateNegotiation(admin, n))
}

func TestCanDeleteNegotiation(t *testing.T) {
	proposer := uuid.New()
	owner := uuid.New()

	n := &models.Negotiation{ProposerID: proposer, ListingOwnerID: owner}

	assert.True(t, CanDeleteNegotiation(Actor{ID: proposer, Role: models.UserTypeBuyer}, n))
	assert.True(t, CanDeleteNegotiation(Actor{ID: uuid.New(), Role: models.UserTypeAdmin}, n))
	assert.False(t, CanDeleteNegotiation(Actor{ID: owner, Role: models.UserTypeFarmer}, n),
		"listing owner alone may not delete")
}
