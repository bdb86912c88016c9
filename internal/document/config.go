package document

import (
	"time"

	"github.com/nao1215/sectxt/internal/model"
)

// Config holds the policy inputs of a run.
type Config struct {
	// Now is the reference time for expiration. Zero means time.Now().
	Now time.Time

	// MaxAgeDays is the maximum lifetime of the document in days.
	MaxAgeDays int

	// SigningKey is the key the document will be signed with, if any.
	SigningKey *model.SigningKey
}

func (c Config) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

func (c Config) keyExpiry() *time.Time {
	if c.SigningKey == nil {
		return nil
	}
	return c.SigningKey.ExpiresAt
}
