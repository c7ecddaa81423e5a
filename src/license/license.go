package license

import (
	"time"

	"github.com/google/uuid"
)

// License is the singleton record that ties an installation to its owner.
// It is created once at setup time and read-only afterwards.
type License struct {
	ID        string    `json:"id" pg:"id,pk"`
	OwnerID   string    `json:"ownerID"`
	Email     string    `json:"email"`
	StripeID  string    `json:"stripeID"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	GetLicense() (*License, error)
	GetLicenseByStripeID(stripeID string) (*License, error)
	InsertLicense(license *License) error
}

// GenerateKey returns a fresh license key.
func GenerateKey() string {
	return uuid.New().String()
}
