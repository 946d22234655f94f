package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magcentre/object-identity/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("token not found")
	ErrDuplicateKey  = errors.New("duplicate key")
)

// ProfileUpdate is the set of account fields the profile flow may change.
// Nil means leave the field alone. Password arrives here already hashed; the
// service layer owns the hash-on-write step.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	FCMToken  *string
}

// UserRepository is the account directory: persisted user records with
// uniqueness enforced on mobile (always) and email (when present).
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByMobile(ctx context.Context, mobile string) (*models.User, error)
	// SetOTP overwrites the outstanding challenge in place; last writer wins.
	SetOTP(ctx context.Context, mobile string, otp int, expiry time.Time) error
	// MarkVerified sets isVerified and clears otp/otpExpiry in one write.
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	MarkBucketCreated(ctx context.Context, id primitive.ObjectID) error
	SetFCMToken(ctx context.Context, id primitive.ObjectID, fcmToken string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error
	IsEmailTaken(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	Search(ctx context.Context, q string) ([]models.User, error)
}

// TokenRepository is the refresh token store. Consume is the single-use
// gate: a conditional delete, so of two concurrent callers only one gets the
// record back.
type TokenRepository interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	FindActive(ctx context.Context, token string, userID primitive.ObjectID) (*models.RefreshToken, error)
	Consume(ctx context.Context, token string, userID primitive.ObjectID) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
