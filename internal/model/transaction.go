package model

import "time"

type TransactionKind string

const (
	TransactionKindRecharge   TransactionKind = "RECHARGE"
	TransactionKindWithdrawal TransactionKind = "WITHDRAWAL"
	TransactionKindPayment    TransactionKind = "PAYMENT"
	TransactionKindCharge     TransactionKind = "CHARGE"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is an append-mostly ledger entry. Status only ever moves
// PENDING -> SUCCESS or PENDING -> FAILED; both targets are terminal.
// Amount is always positive, the kind carries the economic direction.
// Reference is generated here, sent to the provider as the idempotency key,
// and is how inbound webhooks find their way back to the row.
type Transaction struct {
	ID            string            `gorm:"column:id;primaryKey;type:char(36);<-:create"`
	AccountID     string            `gorm:"column:account_id;type:varchar(64);not null;index;<-:create"`
	OwnerKind     OwnerKind         `gorm:"column:owner_kind;type:enum('DRIVER','PASSENGER');not null;default:'DRIVER';<-:create"`
	Kind          TransactionKind   `gorm:"column:kind;type:enum('RECHARGE','WITHDRAWAL','PAYMENT','CHARGE');not null;<-:create"`
	Status        TransactionStatus `gorm:"column:status;type:enum('PENDING','SUCCESS','FAILED');not null;default:'PENDING'"`
	Amount        int64             `gorm:"column:amount;not null;<-:create"`
	Reference     string            `gorm:"column:reference;type:char(36);uniqueIndex;not null;<-:create"`
	ProviderTxID  *string           `gorm:"column:provider_tx_id;type:varchar(128);uniqueIndex"`
	Method        string            `gorm:"column:method;type:varchar(32);not null;<-:create"`
	PhoneNumber   string            `gorm:"column:phone_number;type:varchar(20);not null;<-:create"`
	FailureReason *string           `gorm:"column:failure_reason;type:text"`
	CreatedAt     time.Time         `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}
