package model

import (
	"time"

	"github.com/google/uuid"
)

type FamilyRole string

const (
	FamilyRoleOwner  FamilyRole = "owner"
	FamilyRoleMember FamilyRole = "member"
)

type Family struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
	Members   []FamilyMember `json:"members" db:"-"`
}

type FamilyMember struct {
	FamilyID uuid.UUID  `json:"-" db:"family_id"`
	UserID   uuid.UUID  `json:"user_id" db:"user_id"`
	Username string     `json:"username" db:"username"`
	Email    string     `json:"email" db:"email"`
	Role     FamilyRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joined_at" db:"joined_at"`
}

// Member returns the membership of userID, if any.
func (f *Family) Member(userID uuid.UUID) (FamilyMember, bool) {
	for _, m := range f.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return FamilyMember{}, false
}

// IsOwner reports whether userID owns the family.
func (f *Family) IsOwner(userID uuid.UUID) bool {
	m, ok := f.Member(userID)
	return ok && m.Role == FamilyRoleOwner
}
