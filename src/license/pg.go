package license

import (
	"github.com/go-pg/pg/v10"
)

type PGStore struct {
	db *pg.DB
}

func NewPGStore(db *pg.DB) *PGStore {
	return &PGStore{db: db}
}

// GetLicense returns the installation's license record. When the table
// holds more than one row the pick is deterministic: earliest created_at,
// then lowest id.
func (store *PGStore) GetLicense() (*License, error) {
	license := new(License)
	err := store.db.Model(license).Order("created_at ASC").Order("id ASC").Limit(1).Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return license, nil
}

func (store *PGStore) GetLicenseByStripeID(stripeID string) (*License, error) {
	license := new(License)
	err := store.db.Model(license).Where("stripe_id = ?", stripeID).Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return license, nil
}

func (store *PGStore) InsertLicense(license *License) error {
	_, err := store.db.Model(license).Insert()
	return err
}
