package usecase

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"skillbridge/internal/domain/profile"
	"skillbridge/internal/domain/user"
	"skillbridge/internal/pkg/jwt"
	ucauth "skillbridge/internal/usecase/auth"

	"github.com/google/uuid"
)

// Session is the token pair handed to a signed-in client.
type Session struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type VerifyResult struct {
	UserID           uuid.UUID
	Email            string
	AlreadyConfirmed bool
}

// SessionInfo is what a client needs right after start-up.
type SessionInfo struct {
	Profile   profile.Profile
	IsAdmin   bool
	ExpiresAt time.Time
}

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (user.User, error)
	Login(ctx context.Context, in ucauth.LoginInput) (user.User, Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
	VerifyEmail(ctx context.Context, token string) (VerifyResult, error)
	ResendVerification(ctx context.Context, email string) error
	Session(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (SessionInfo, error)
}

type AuthDeps struct {
	Users           user.Repository
	Profiles        profile.Repository
	Roles           *Roles
	JWT             jwt.Service
	Denylist        TokenDenylist
	Mailer          ucauth.Mailer
	RequireVerified bool
	// CallbackURL receives the verification token as its "token" query parameter.
	CallbackURL string
	Logger      *log.Logger
}

type Auth struct {
	authSvc *ucauth.Service
	deps    AuthDeps
	now     func() time.Time
}

func NewAuthUsecase(deps AuthDeps) *Auth {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Mailer == nil {
		deps.Mailer = ucauth.LogMailer{Logger: deps.Logger}
	}
	return &Auth{
		authSvc: ucauth.NewService(deps.Users, deps.RequireVerified),
		deps:    deps,
		now:     time.Now,
	}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (user.User, error) {
	usr, err := u.authSvc.Register(ctx, in)
	if err != nil {
		return user.User{}, err
	}

	if err := u.sendVerification(ctx, usr); err != nil {
		u.deps.Logger.Printf("[Auth] verification email failed user_id=%s err=%v", usr.ID, err)
	}
	return usr, nil
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (user.User, Session, error) {
	usr, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return user.User{}, Session{}, err
	}

	sess, err := u.issue(usr)
	if err != nil {
		return user.User{}, Session{}, err
	}
	return usr, sess, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, ErrUnauthorized
	}

	claims, err := u.deps.JWT.ValidateToken(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrRefreshTokenExpired
		}
		return Session{}, ErrInvalidRefreshToken
	}

	// Rotation: the first request to claim the jti wins, every later use of
	// the same refresh token is rejected.
	if u.deps.Denylist != nil {
		claimed, err := u.deps.Denylist.Claim(ctx, claims.ID, claims.ExpiresAtTime())
		if err != nil {
			u.deps.Logger.Printf("[Auth] refresh claim failed jti=%s err=%v", claims.ID, err)
		} else if !claimed {
			return Session{}, ErrInvalidRefreshToken
		}
	}

	usr, err := u.deps.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, ErrInternal
	}

	return u.issue(usr)
}

// Logout revokes whichever of the two tokens is present and valid.
func (u *Auth) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if refreshToken != "" {
		if claims, err := u.deps.JWT.ValidateToken(refreshToken, jwt.TokenTypeRefresh); err == nil {
			u.revoke(ctx, claims)
		}
	}
	if accessToken != "" {
		if claims, err := u.deps.JWT.ValidateToken(accessToken, jwt.TokenTypeAccess); err == nil {
			u.revoke(ctx, claims)
		}
	}
	return nil
}

func (u *Auth) VerifyEmail(ctx context.Context, token string) (VerifyResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return VerifyResult{}, ErrVerificationInvalid
	}

	claims, err := u.deps.JWT.ValidateToken(token, jwt.TokenTypeVerify)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return VerifyResult{}, ErrVerificationExpired
		}
		return VerifyResult{}, ErrVerificationInvalid
	}

	changed, err := u.deps.Users.MarkEmailVerified(ctx, claims.UserID, u.now().UTC())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return VerifyResult{}, ErrVerificationInvalid
		}
		return VerifyResult{}, ErrInternal
	}

	return VerifyResult{UserID: claims.UserID, Email: claims.Email, AlreadyConfirmed: !changed}, nil
}

// ResendVerification never reports whether the address exists.
func (u *Auth) ResendVerification(ctx context.Context, email string) error {
	usr, err := u.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			u.deps.Logger.Printf("[Auth] resend lookup failed err=%v", err)
		}
		return nil
	}
	if usr.Verified() {
		return nil
	}
	if err := u.sendVerification(ctx, usr); err != nil {
		u.deps.Logger.Printf("[Auth] resend verification failed user_id=%s err=%v", usr.ID, err)
	}
	return nil
}

func (u *Auth) Session(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (SessionInfo, error) {
	p, err := u.deps.Profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return SessionInfo{}, ErrUnauthorized
		}
		return SessionInfo{}, ErrInternal
	}

	isAdmin := false
	if u.deps.Roles != nil {
		isAdmin, err = u.deps.Roles.IsAdmin(ctx, userID)
		if err != nil {
			return SessionInfo{}, ErrInternal
		}
	}

	return SessionInfo{Profile: p, IsAdmin: isAdmin, ExpiresAt: expiresAt}, nil
}

func (u *Auth) issue(usr user.User) (Session, error) {
	access, err := u.deps.JWT.GenerateAccessToken(usr.ID, usr.Email)
	if err != nil {
		return Session{}, ErrInternal
	}
	refresh, err := u.deps.JWT.GenerateRefreshToken(usr.ID)
	if err != nil {
		return Session{}, ErrInternal
	}
	return Session{
		AccessToken:      access.Value,
		RefreshToken:     refresh.Value,
		ExpiresAt:        access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (u *Auth) revoke(ctx context.Context, claims jwt.Claims) {
	if u.deps.Denylist == nil {
		return
	}
	if err := u.deps.Denylist.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		u.deps.Logger.Printf("[Auth] revoke token failed type=%s jti=%s err=%v", claims.TokenType, claims.ID, err)
	}
}

func (u *Auth) sendVerification(ctx context.Context, usr user.User) error {
	tok, err := u.deps.JWT.GenerateVerifyToken(usr.ID, usr.Email)
	if err != nil {
		return err
	}
	return u.deps.Mailer.SendVerification(ctx, usr.Email, verificationLink(u.deps.CallbackURL, tok.Value))
}

func verificationLink(base, token string) string {
	if base == "" {
		return token
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}
