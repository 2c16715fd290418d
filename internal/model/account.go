package model

import "time"

type OwnerKind string

const (
	OwnerKindDriver    OwnerKind = "DRIVER"
	OwnerKindPassenger OwnerKind = "PASSENGER"
)

// Account is a wallet. The primary key is the opaque user id issued by the
// identity provider, so the authenticated subject maps straight onto its
// wallet. AvailableBalance is in minor currency units and must never go
// negative; every debit goes through the conditional update in the
// repository, never through read-modify-write.
type Account struct {
	ID               string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	OwnerKind        OwnerKind `gorm:"column:owner_kind;type:enum('DRIVER','PASSENGER');not null;default:'DRIVER'"`
	AvailableBalance int64     `gorm:"column:available_balance;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"`
}

func (Account) TableName() string {
	return "accounts"
}
