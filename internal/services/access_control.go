// internal/services/access_control.go
package services

import (
	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/internal/models"
)

// Actor is the authenticated identity a request acts as, supplied by the
// session middleware.
type Actor struct {
	ID   uuid.UUID
	Role models.UserType
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.UserTypeAdmin
}

// Access control predicates. All of them are pure: they look only at the
// actor and the records passed in, never at storage, so every operation in
// the negotiation engine authorizes through the same truth table.

// CanCreateNegotiation rejects negotiating one's own listing. A nil listing
// (not found) can never be negotiated.
func CanCreateNegotiation(actorID uuid.UUID, listing *models.Listing) bool {
	if listing == nil {
		return false
	}
	return listing.OwnerID != actorID
}

// CanViewNegotiation admits the proposer, the listing owner, and admins.
func CanViewNegotiation(actor Actor, n *models.Negotiation) bool {
	if n == nil {
		return false
	}
	return actor.ID == n.ProposerID || actor.ID == n.ListingOwnerID || actor.IsAdmin()
}

// CanMutateNegotiation admits both sides of the thread: either party may
// counter or change status.
func CanMutateNegotiation(actorID uuid.UUID, n *models.Negotiation) bool {
	if n == nil {
		return false
	}
	return actorID == n.ProposerID || actorID == n.ListingOwnerID
}

// CanDeleteNegotiation admits only the original proposer and admins. The
// listing owner alone may not delete another user's negotiation.
func CanDeleteNegotiation(actor Actor, n *models.Negotiation) bool {
	if n == nil {
		return false
	}
	return actor.ID == n.ProposerID || actor.IsAdmin()
}
