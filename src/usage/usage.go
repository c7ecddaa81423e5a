package usage

import "time"

// Record holds the running token total for one license. The row is only
// ever mutated through the additive upsert in Meter.Record, so the total
// never decreases.
type Record struct {
	tableName struct{} `pg:"usage_records,alias:usage_record"`

	LicenseID   string    `json:"licenseID" pg:"license_id,pk"`
	TotalTokens int64     `json:"totalTokens" pg:"total_tokens,use_zero"`
	LastUpdated time.Time `json:"lastUpdated" pg:"last_updated"`
}
