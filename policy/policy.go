// Package policy holds the authorization predicates shared by the cart and
// order handlers. Handlers compose these instead of comparing group names
// inline.
package policy

import "github.com/javiersgm/bistro-api/models"

// IsManagerOrSuperuser reports whether the role grants manager privilege.
// Superusers are already folded into RoleManager at resolution time.
func IsManagerOrSuperuser(role models.Role) bool {
	return role == models.RoleManager
}

// IsCustomer reports whether the principal acts as a plain customer.
// Carts and checkout are customer-only concepts.
func IsCustomer(role models.Role) bool {
	return role == models.RoleCustomer
}

// IsAssignedDeliveryCrew reports whether userID is the delivery crew member
// assigned to the order.
func IsAssignedDeliveryCrew(role models.Role, order *models.Order, userID uint) bool {
	if role != models.RoleDeliveryCrew {
		return false
	}
	return order.DeliveryCrewID != nil && *order.DeliveryCrewID == userID
}

// IsOwner reports whether the requester owns the resource.
func IsOwner(ownerID, requesterID uint) bool {
	return ownerID == requesterID
}

// CanViewOrder decides order visibility: managers see everything, delivery
// crew see their assigned orders, and the user who placed an order always
// sees it. Anyone else gets a not-found, never a forbidden, so existence is
// not leaked.
func CanViewOrder(role models.Role, order *models.Order, userID uint) bool {
	if role == models.RoleAnonymous {
		return false
	}
	if IsManagerOrSuperuser(role) {
		return true
	}
	if IsAssignedDeliveryCrew(role, order, userID) {
		return true
	}
	// Ownership is not role-gated: a customer later added to the delivery
	// crew keeps visibility of the orders they placed before.
	return IsOwner(order.UserID, userID)
}
