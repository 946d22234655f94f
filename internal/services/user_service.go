package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/magcentre/object-identity/internal/apperr"
	"github.com/magcentre/object-identity/internal/hash"
	"github.com/magcentre/object-identity/internal/models"
	"github.com/magcentre/object-identity/internal/repository"
	"github.com/magcentre/object-identity/internal/utils"
)

type userService struct {
	users  repository.UserRepository
	hasher *hash.Hasher
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, hasher *hash.Hasher, logger *zap.Logger) UserService {
	return &userService{users: users, hasher: hasher, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, id string) (*models.PublicUser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Parameter("invalid user id")
	}
	u, err := s.users.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Parameter("user does not exist")
		}
		return nil, apperr.System("failed to load profile", err)
	}
	pub := u.Public()
	return &pub, nil
}

// UpdateProfile re-checks email uniqueness excluding the caller and replaces
// any incoming plaintext password with its hash before the write reaches the
// store.
func (s *userService) UpdateProfile(ctx context.Context, id string, req ProfileRequest) (*models.PublicUser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Parameter("invalid user id")
	}

	upd := repository.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		FCMToken:  req.FCMToken,
	}

	if req.Email != nil {
		taken, err := s.users.IsEmailTaken(ctx, *req.Email, oid)
		if err != nil {
			return nil, apperr.System("failed to check email uniqueness", err)
		}
		if taken {
			return nil, apperr.Parameter("account with same email already exists")
		}
	}

	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password); err != nil {
			return nil, apperr.Parameter(err.Error())
		}
		digest, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperr.System("failed to hash password", err)
		}
		upd.Password = &digest
	}

	if err := s.users.UpdateProfile(ctx, oid, upd); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperr.Parameter("account with same email already exists")
		}
		return nil, apperr.System("failed to update profile", err)
	}

	u, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, apperr.System("failed to load updated profile", err)
	}
	pub := u.Public()
	return &pub, nil
}

func (s *userService) ID2Object(ctx context.Context, ids []string) ([]models.PublicUser, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, apperr.Parameter("invalid user id: " + id)
		}
		oids = append(oids, oid)
	}
	users, err := s.users.FindByIDs(ctx, oids)
	if err != nil {
		return nil, apperr.System("failed to resolve user ids", err)
	}
	return publics(users), nil
}

func (s *userService) Search(ctx context.Context, q string) ([]models.PublicUser, error) {
	if q == "" {
		return []models.PublicUser{}, nil
	}
	users, err := s.users.Search(ctx, q)
	if err != nil {
		return nil, apperr.System("failed to search users", err)
	}
	return publics(users), nil
}

func publics(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out
}
