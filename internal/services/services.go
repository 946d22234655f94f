package services

import (
	"context"

	"github.com/magcentre/object-identity/internal/models"
)

// AuthService drives the credential and activation lifecycle: password
// login, refresh token rotation, and the OTP registration flow.
type AuthService interface {
	// Login authenticates by email and password and issues a token pair.
	Login(ctx context.Context, email, password, fcmToken string) (*models.AuthResult, error)
	// Refresh consumes a refresh token and issues a replacement pair. The
	// presented token is unusable before the new pair is returned.
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	// RequestOTP issues a challenge for the mobile number, creating a minimal
	// unverified account on first contact, and dispatches the code by SMS.
	RequestOTP(ctx context.Context, mobile string) error
	// VerifyOTP checks the challenge, activates the account if needed, and
	// issues a token pair. A valid OTP on an already active account simply
	// re-authenticates.
	VerifyOTP(ctx context.Context, mobile string, otp int) (*models.AuthResult, error)
	// Logout deletes the presented refresh token record.
	Logout(ctx context.Context, refreshToken string) error
}

// ProfileRequest carries the profile fields a caller may update. Nil leaves
// a field untouched. Password arrives as plaintext and is hashed on write.
type ProfileRequest struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	FCMToken  *string
}

// UserService covers the directory operations exposed alongside auth.
type UserService interface {
	GetProfile(ctx context.Context, id string) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, id string, req ProfileRequest) (*models.PublicUser, error)
	// ID2Object resolves account ids to their public projections.
	ID2Object(ctx context.Context, ids []string) ([]models.PublicUser, error)
	// Search matches name or email case-insensitively.
	Search(ctx context.Context, q string) ([]models.PublicUser, error)
}
