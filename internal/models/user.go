package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an identity record. Mobile is unique across all accounts; email is
// unique when present but optional until the profile-update flow sets it
// (mobile-first signup creates a minimal record with no email or password).
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName       string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName        string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Email           string             `bson:"email,omitempty" json:"email,omitempty"`
	Mobile          string             `bson:"mobile" json:"mobile"`
	Password        string             `bson:"password,omitempty" json:"-"`
	Role            string             `bson:"role" json:"role"`
	IsVerified      bool               `bson:"isVerified" json:"isVerified"`
	IsBucketCreated bool               `bson:"isBucketCreated" json:"isBucketCreated"`
	IsBlocked       bool               `bson:"isBlocked" json:"isBlocked"`
	OTP             *int               `bson:"otp,omitempty" json:"-"`
	OTPExpiry       *time.Time         `bson:"otpExpiry,omitempty" json:"-"`
	FCMToken        string             `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Public returns the caller-visible view of the account: no password hash,
// no OTP state, no push token.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID.Hex(),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Mobile:          u.Mobile,
		Role:            u.Role,
		IsVerified:      u.IsVerified,
		IsBucketCreated: u.IsBucketCreated,
	}
}

// PublicUser is the projection of User exposed in auth responses and the
// id2object/search endpoints.
type PublicUser struct {
	ID              string `json:"id"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Email           string `json:"email,omitempty"`
	Mobile          string `json:"mobile"`
	Role            string `json:"role"`
	IsVerified      bool   `json:"isVerified"`
	IsBucketCreated bool   `json:"isBucketCreated"`
}
