package models

import "time"

// Group names used for role classification.
const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery Crew"
)

// Role is the effective role category of a principal, resolved once per request.
// A principal holds exactly one role at evaluation time.
type Role int

const (
	RoleAnonymous Role = iota
	RoleCustomer
	RoleManager
	RoleDeliveryCrew
)

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleManager:
		return "manager"
	case RoleDeliveryCrew:
		return "delivery_crew"
	default:
		return "anonymous"
	}
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"-"`
	Groups       []Group   `gorm:"many2many:user_groups;" json:"-"`
	CreatedAt    time.Time `json:"-"`
}

type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// ResolveRole classifies a user into a single role category.
// Manager/superuser is checked first, then delivery crew; everyone else
// defaults to customer. A nil user is anonymous.
func ResolveRole(u *User) Role {
	if u == nil {
		return RoleAnonymous
	}
	if u.IsSuperuser || u.InGroup(GroupManager) {
		return RoleManager
	}
	if u.InGroup(GroupDeliveryCrew) {
		return RoleDeliveryCrew
	}
	return RoleCustomer
}

// InGroup reports whether the user belongs to the named group.
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
