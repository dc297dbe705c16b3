package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidAccess is the only error Verify ever returns. Expired, tampered and
// malformed tokens are indistinguishable to the caller on purpose.
var ErrInvalidAccess = errors.New("invalid access token")

type VideoTokenClaims struct {
	VideoID  string
	UserID   uuid.UUID
	UserRole string
	IssuedAt time.Time
}

// VideoTokenIssuer mints short-lived tokens binding a viewer to one video.
// The signing key is process-wide config; rotating it invalidates every
// outstanding token, which is fine given the short window.
type VideoTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewVideoTokenIssuer(secret string, ttl time.Duration) *VideoTokenIssuer {
	return &VideoTokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *VideoTokenIssuer) Issue(videoID string, userID uuid.UUID, role string) (string, error) {
	return i.issueAt(videoID, userID, role, time.Now())
}

func (i *VideoTokenIssuer) issueAt(videoID string, userID uuid.UUID, role string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"video_id":  videoID,
		"user_id":   userID.String(),
		"user_role": role,
		"iat":       now.Unix(),
		"exp":       now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *VideoTokenIssuer) Verify(tokenStr string) (*VideoTokenClaims, error) {
	return i.verifyAt(tokenStr, time.Now())
}

func (i *VideoTokenIssuer) verifyAt(tokenStr string, now time.Time) (*VideoTokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidAccess
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidAccess
	}

	videoID, _ := claims["video_id"].(string)
	userIDStr, _ := claims["user_id"].(string)
	role, _ := claims["user_role"].(string)
	iatFloat, _ := claims["iat"].(float64)
	if videoID == "" || userIDStr == "" || iatFloat == 0 {
		return nil, ErrInvalidAccess
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidAccess
	}

	// Defense in depth: recompute the age from the embedded issue time rather
	// than trusting the exp claim alone.
	issuedAt := time.Unix(int64(iatFloat), 0)
	if now.Sub(issuedAt) > i.ttl || issuedAt.After(now.Add(time.Minute)) {
		return nil, ErrInvalidAccess
	}

	return &VideoTokenClaims{
		VideoID:  videoID,
		UserID:   userID,
		UserRole: role,
		IssuedAt: issuedAt,
	}, nil
}
