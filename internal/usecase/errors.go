package usecase

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrVerificationExpired = errors.New("verification link has expired")
	ErrVerificationInvalid = errors.New("invalid verification link")
	ErrInternal            = errors.New("internal error")
)
