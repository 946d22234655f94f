package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token types carried in the JWT "typ" claim. Only refresh tokens are ever
// persisted; access tokens stay stateless.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// RefreshToken is the persisted record of an issued refresh token. A record
// is deleted on its first successful use, so possession of the string alone
// is never enough twice.
type RefreshToken struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Token       string             `bson:"token" json:"token"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Type        string             `bson:"type" json:"type"`
	Expires     time.Time          `bson:"expires" json:"expires"`
	Blacklisted bool               `bson:"blacklisted" json:"blacklisted"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// TokenDetail is one half of an issued pair.
type TokenDetail struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// AuthResult is what every successful login/refresh/OTP-verification returns:
// the account's public fields plus the freshly issued pair.
type AuthResult struct {
	User    PublicUser  `json:"user"`
	Access  TokenDetail `json:"access"`
	Refresh TokenDetail `json:"refresh"`
}
