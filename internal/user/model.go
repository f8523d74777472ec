// File: internal/user/model.go
package user

import (
	"encoding/json"
	"time"

	"mailru_broker/internal/common"
	"mailru_broker/internal/shared"

	"github.com/google/uuid"
)

// FederatedUser is a local account provisioned from a federated identity.
// (IdpAlias, EmailKey) is unique: one account per email per provider instance.
type FederatedUser struct {
	common.BaseModel
	IdpAlias    string `gorm:"type:varchar(100);not null;uniqueIndex:idx_federated_alias_email"`
	EmailKey    string `gorm:"type:varchar(255);not null;uniqueIndex:idx_federated_alias_email"`
	Email       string `gorm:"type:varchar(255);not null"`
	Username    string `gorm:"type:varchar(255);not null"`
	FirstName   string `gorm:"type:varchar(100)"`
	LastName    string `gorm:"type:varchar(100)"`
	RawProfile  string `gorm:"type:text"`
	LastLoginAt *time.Time
}

// TableName specifies the table name for the FederatedUser model.
func (FederatedUser) TableName() string {
	return "federated_users"
}

func (u *FederatedUser) GetID() uuid.UUID    { return u.ID }
func (u *FederatedUser) GetEmail() string    { return u.Email }
func (u *FederatedUser) GetIdpAlias() string { return u.IdpAlias }

// Profile decodes the stored raw profile for attribute mapping.
func (u *FederatedUser) Profile() (shared.RawProfile, error) {
	if u.RawProfile == "" {
		return shared.RawProfile{}, nil
	}
	var p shared.RawProfile
	if err := json.Unmarshal([]byte(u.RawProfile), &p); err != nil {
		return nil, err
	}
	return p, nil
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID          uuid.UUID         `json:"id"`
	IdpAlias    string            `json:"idp_alias"`
	Email       string            `json:"email"`
	Username    string            `json:"username"`
	FirstName   string            `json:"first_name,omitempty"`
	LastName    string            `json:"last_name,omitempty"`
	Attributes  shared.RawProfile `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
}

// ToUserResponse converts a FederatedUser to a UserResponse DTO.
// A raw profile that cannot be decoded is left out.
func ToUserResponse(u *FederatedUser) UserResponse {
	attrs, _ := u.Profile()
	return UserResponse{
		ID:          u.ID,
		IdpAlias:    u.IdpAlias,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Attributes:  attrs,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
