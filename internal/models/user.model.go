package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	BaseUUIDModel
	FirstName   string  `gorm:"type:text"               json:"firstName"`
	LastName    string  `gorm:"type:text"               json:"lastName"`
	FullName    string  `gorm:"type:text"               json:"fullName"`
	DisplayName string  `gorm:"type:text"               json:"displayName"`
	Email       *string `gorm:"type:text;uniqueIndex"   json:"email"`
	IsAdmin     bool    `gorm:"type:bool;default:false" json:"isAdmin"`
	IsActive    bool    `gorm:"type:bool;default:true"  json:"isActive"`

	// OIDC integration fields
	OIDCUserID      string     `gorm:"column:oidc_user_id;type:text;uniqueIndex" json:"-"`
	LastLoginAt     *time.Time `gorm:"type:timestamp"                            json:"lastLoginAt,omitempty"`
	ProfileVerified bool       `gorm:"type:bool;default:false"                   json:"profileVerified"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	fullName := strings.TrimSpace(u.FirstName + " " + u.LastName)
	u.FullName = fullName
	if u.DisplayName == "" {
		u.DisplayName = fullName
	}
	return nil
}

// UserProfile represents public user profile information
type UserProfile struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	FullName    string     `json:"fullName"`
	DisplayName string     `json:"displayName"`
	Email       *string    `json:"email,omitempty"`
	IsActive    bool       `json:"isActive"`
	IsAdmin     bool       `json:"isAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// ToProfile converts a User to a UserProfile (public information only)
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:          u.ID.String(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
	}
}

// UpdateFromClaims refreshes profile fields from verified OIDC claims on each
// session. The OIDC user id is the stable external identity key.
func (u *User) UpdateFromClaims(oidcUserID string, email *string, firstName, lastName string, emailVerified bool) {
	now := time.Now()
	u.LastLoginAt = &now

	if oidcUserID != "" {
		u.OIDCUserID = oidcUserID
	}

	if email != nil && *email != "" {
		u.Email = email
	}

	if firstName != "" {
		u.FirstName = firstName
	}
	if lastName != "" {
		u.LastName = lastName
	}

	if firstName != "" || lastName != "" {
		u.FullName = strings.TrimSpace(firstName + " " + lastName)
	}

	if u.DisplayName == "" && u.FullName != "" {
		u.DisplayName = u.FullName
	}

	if emailVerified && email != nil && *email != "" {
		u.ProfileVerified = true
	}
}
