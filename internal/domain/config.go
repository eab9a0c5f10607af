package domain

import "time"

// GlobalConfigID is the fixed key of the single global_config row.
const GlobalConfigID = 1

// GlobalConfig is the singleton organization identity record. UpdatedBy
// always references the user who last wrote it; the store keeps both the
// one-row and the one-owner invariant.
type GlobalConfig struct {
	ID         int       `db:"id" json:"id"`
	OrgName    string    `db:"org_name" json:"org_name"`
	OrgTaxID   string    `db:"org_tax_id" json:"org_tax_id"`
	OrgAddress string    `db:"org_address" json:"org_address"`
	OrgSlogan  string    `db:"org_slogan" json:"org_slogan"`
	UpdatedBy  string    `db:"updated_by" json:"updated_by"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
