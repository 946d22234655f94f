package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/magcentre/object-identity/internal/apperr"
	"github.com/magcentre/object-identity/internal/bucket"
	"github.com/magcentre/object-identity/internal/hash"
	"github.com/magcentre/object-identity/internal/metrics"
	"github.com/magcentre/object-identity/internal/models"
	"github.com/magcentre/object-identity/internal/repository"
	"github.com/magcentre/object-identity/internal/token"
	"github.com/magcentre/object-identity/internal/twilio"
	"github.com/magcentre/object-identity/internal/utils"
)

const otpMessageTemplate = "Your One Time Password(OTP) is %d. It is valid for %d mins. Don't share this with anyone."

type authService struct {
	users         repository.UserRepository
	tokens        repository.TokenRepository
	hasher        *hash.Hasher
	tokenMgr      *token.Manager
	sms           twilio.Client
	buckets       bucket.Provisioner
	otpTTLMinutes int
	logger        *zap.Logger
}

// NewAuthService wires the credential/activation engine.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	hasher *hash.Hasher,
	tokenMgr *token.Manager,
	sms twilio.Client,
	buckets bucket.Provisioner,
	otpTTLMinutes int,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:         users,
		tokens:        tokens,
		hasher:        hasher,
		tokenMgr:      tokenMgr,
		sms:           sms,
		buckets:       buckets,
		otpTTLMinutes: otpTTLMinutes,
		logger:        logger,
	}
}

// Login authenticates by email and password. The password check runs before
// the verified/blocked checks so a wrong password never reveals account
// state.
func (s *authService) Login(ctx context.Context, email, password, fcmToken string) (result *models.AuthResult, err error) {
	defer func() { metrics.Logins.WithLabelValues(metrics.Outcome(err)).Inc() }()

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Parameter("invalid email")
		}
		return nil, apperr.System("failed to look up account by email", err)
	}

	if u.Password == "" {
		// account created via OTP and never claimed credentials
		return nil, apperr.Parameter("invalid password")
	}
	matched, err := s.hasher.Match(password, u.Password)
	if err != nil {
		s.logger.Error("stored password digest is unreadable",
			zap.String("userId", u.ID.Hex()), zap.Error(err))
		return nil, apperr.System("failed to verify password", err)
	}
	if !matched {
		return nil, apperr.Parameter("invalid password")
	}

	if !u.IsVerified {
		return nil, apperr.Parameter("your account is not verified, please verify account and try again")
	}
	if u.IsBlocked {
		return nil, apperr.Parameter("your account is blocked, please contact support")
	}

	if fcmToken != "" {
		if err := s.users.SetFCMToken(ctx, u.ID, fcmToken); err != nil {
			return nil, apperr.System("failed to persist fcm token", err)
		}
	}

	return s.issueTokens(ctx, u)
}

// Refresh rotates a refresh token. Consume is a conditional delete, so two
// concurrent calls on the same token produce exactly one winner.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (result *models.AuthResult, err error) {
	defer func() { metrics.Refreshes.WithLabelValues(metrics.Outcome(err)).Inc() }()

	claims, err := s.tokenMgr.VerifyTyped(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, apperr.Auth("failed to verify refresh token")
	}
	uid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, apperr.Auth("failed to verify refresh token")
	}

	if _, err := s.tokens.Consume(ctx, refreshToken, uid); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, apperr.Auth("not a valid refresh token")
		}
		return nil, apperr.System("failed to consume refresh token", err)
	}

	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Auth("not a valid refresh token")
		}
		return nil, apperr.System("failed to load account for refresh", err)
	}

	// The old token is already gone; if issuance fails past this point the
	// caller must authenticate again rather than keep a half-rotated pair.
	return s.issueTokens(ctx, u)
}

// RequestOTP persists the challenge first and dispatches the SMS second, so
// a dispatch failure never leaves an unrecorded challenge.
func (s *authService) RequestOTP(ctx context.Context, mobile string) error {
	mobile = utils.NormalizeMobile(mobile)
	otp := utils.GenerateOTP()
	expiry := time.Now().Add(time.Duration(s.otpTTLMinutes) * time.Minute)

	_, err := s.users.FindByMobile(ctx, mobile)
	switch {
	case err == nil:
		if err := s.users.SetOTP(ctx, mobile, otp, expiry); err != nil {
			return apperr.System("failed to store otp challenge", err)
		}
	case errors.Is(err, repository.ErrUserNotFound):
		u := &models.User{Mobile: mobile, Role: models.RoleUser, OTP: &otp, OTPExpiry: &expiry}
		if createErr := s.users.Create(ctx, u); createErr != nil {
			if !errors.Is(createErr, repository.ErrDuplicateKey) {
				return apperr.System("failed to create account for otp challenge", createErr)
			}
			// lost a create race; the account exists now, set the code there
			if err := s.users.SetOTP(ctx, mobile, otp, expiry); err != nil {
				return apperr.System("failed to store otp challenge", err)
			}
		}
	default:
		return apperr.System("failed to look up account by mobile", err)
	}

	metrics.OTPRequested.Inc()

	if !s.sms.IsConfigured() {
		s.logger.Warn("sms client not configured, otp dispatch skipped",
			zap.String("mobile", mobile))
		return nil
	}
	message := fmt.Sprintf(otpMessageTemplate, otp, s.otpTTLMinutes)
	if err := s.sms.SendSMS(ctx, mobile, message); err != nil {
		s.logger.Error("otp dispatch failed", zap.String("mobile", mobile), zap.Error(err))
		return apperr.System("failed to send otp", err)
	}
	return nil
}

// VerifyOTP runs the challenge check, the activation state machine, and
// token issuance.
func (s *authService) VerifyOTP(ctx context.Context, mobile string, otp int) (result *models.AuthResult, err error) {
	defer func() { metrics.OTPVerified.WithLabelValues(metrics.Outcome(err)).Inc() }()

	u, err := s.verifyChallenge(ctx, mobile, otp)
	if err != nil {
		return nil, err
	}
	u, err = s.activate(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, u)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.tokenMgr.VerifyTyped(refreshToken, models.TokenTypeRefresh); err != nil {
		return apperr.Auth("failed to verify refresh token")
	}
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return apperr.Auth("not a valid refresh token")
		}
		return apperr.System("failed to delete refresh token", err)
	}
	return nil
}

// verifyChallenge is a pure read-check: it rejects missing, expired, or
// mismatched codes and otherwise returns the account unchanged. Clearing
// the challenge is the activation step's job.
func (s *authService) verifyChallenge(ctx context.Context, mobile string, otp int) (*models.User, error) {
	mobile = utils.NormalizeMobile(mobile)

	u, err := s.users.FindByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Parameter("mobile does not exist")
		}
		return nil, apperr.System("failed to look up account by mobile", err)
	}
	if u.OTP == nil || u.OTPExpiry == nil {
		return nil, apperr.Parameter("invalid otp")
	}
	if time.Now().After(*u.OTPExpiry) {
		return nil, apperr.Parameter("OTP is expired")
	}
	if *u.OTP != otp {
		return nil, apperr.Parameter("invalid otp")
	}
	return u, nil
}

// activate drives Unverified -> Verified-NoBucket -> Active. Re-entry with a
// bucket already provisioned is a no-op, and a provisioning failure leaves
// the account verified so the next OTP pass retries only that step.
func (s *authService) activate(ctx context.Context, u *models.User) (*models.User, error) {
	if !u.IsVerified || u.OTP != nil {
		// sets isVerified and clears the consumed challenge in one write
		if err := s.users.MarkVerified(ctx, u.ID); err != nil {
			return nil, apperr.System("failed to mark account verified", err)
		}
		u.IsVerified = true
		u.OTP = nil
		u.OTPExpiry = nil
	}

	if u.IsBucketCreated {
		return u, nil
	}

	err := s.buckets.CreateBucket(ctx, u.ID.Hex())
	metrics.BucketProvisions.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Error("bucket provisioning failed",
			zap.String("userId", u.ID.Hex()), zap.Error(err))
		return nil, apperr.System("failed to provision account bucket", err)
	}
	if err := s.users.MarkBucketCreated(ctx, u.ID); err != nil {
		return nil, apperr.System("failed to mark bucket created", err)
	}
	u.IsBucketCreated = true
	s.logger.Info("account activated", zap.String("userId", u.ID.Hex()))
	return u, nil
}

// issueTokens creates the access/refresh pair and persists the refresh
// record. The response carries only the account's public fields.
func (s *authService) issueTokens(ctx context.Context, u *models.User) (*models.AuthResult, error) {
	access, accessExp, err := s.tokenMgr.SignAccess(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, apperr.System("failed to sign access token", err)
	}
	refresh, refreshExp, err := s.tokenMgr.SignRefresh(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, apperr.System("failed to sign refresh token", err)
	}

	rec := &models.RefreshToken{
		Token:       refresh,
		User:        u.ID,
		Type:        models.TokenTypeRefresh,
		Expires:     refreshExp,
		Blacklisted: false,
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return nil, apperr.System("failed to persist refresh token", err)
	}

	return &models.AuthResult{
		User:    u.Public(),
		Access:  models.TokenDetail{Token: access, Expires: accessExp},
		Refresh: models.TokenDetail{Token: refresh, Expires: refreshExp},
	}, nil
}
