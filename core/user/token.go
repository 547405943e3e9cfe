package user

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrInvalidToken = errors.New("invalid or expired token")
)

// MakeResetToken generates an opaque password reset token.
// The token is persisted on the User together with its expiry so that
// resetting invalidates it (single use).
func MakeResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generating reset token")
	}
	return hex.EncodeToString(buf), nil
}

// checkResetToken verifies that the token matches the one stored on the User
// and has not expired.
func checkResetToken(usr User, token string) error {
	if token == "" || !usr.ResetToken.Valid || usr.ResetToken.String != token {
		return ErrInvalidToken
	}
	if !usr.ResetTokenExpires.Valid || NowFunc().After(usr.ResetTokenExpires.Time) {
		return ErrInvalidToken
	}
	return nil
}
