package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("TRANSACTION_NOT_FOUND")
var ErrTransactionDuplicate = errors.New("TRANSACTION_DUPLICATE")
var ErrNoRowsAffected = errors.New("NO_ROWS_AFFECTED")

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	GetByReference(ctx context.Context, reference string) (*model.Transaction, error)
	SetProviderTxID(ctx context.Context, reference string, providerTxID string) error
	Settle(ctx context.Context, reference string, providerTxID *string) error
	Fail(ctx context.Context, reference string, reason string) error
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Transaction, error)
}

type Transaction struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &Transaction{db: db}
}

func (r *Transaction) Create(ctx context.Context, tx *model.Transaction) error {
	db := GetTx(ctx, r.db)
	err := db.Create(tx).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrTransactionDuplicate
	}

	return err
}

func (r *Transaction) GetByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	var tx model.Transaction

	db := GetTx(ctx, r.db)
	err := db.Where("reference = ?", reference).First(&tx).Error
	if err == nil {
		return &tx, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

// SetProviderTxID records the provider's id on a still-PENDING row. The
// status filter keeps a terminal row untouched: when the webhook settles the
// transaction before the initiator gets here, the id the webhook recorded
// wins and the caller gets ErrNoRowsAffected.
func (r *Transaction) SetProviderTxID(ctx context.Context, reference string, providerTxID string) error {
	db := GetTx(ctx, r.db)
	result := db.Model(&model.Transaction{}).
		Where("reference = ? AND status = ?", reference, model.TransactionStatusPending).
		Updates(map[string]any{
			"provider_tx_id": providerTxID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

// Settle moves PENDING -> SUCCESS. The status filter makes the transition
// single-winner: a concurrent duplicate delivery updates zero rows and gets
// ErrNoRowsAffected, which callers treat as already processed.
func (r *Transaction) Settle(ctx context.Context, reference string, providerTxID *string) error {
	updates := map[string]any{
		"status":     model.TransactionStatusSuccess,
		"updated_at": time.Now(),
	}
	if providerTxID != nil && *providerTxID != "" {
		updates["provider_tx_id"] = *providerTxID
	}

	db := GetTx(ctx, r.db)
	result := db.Model(&model.Transaction{}).
		Where("reference = ? AND status = ?", reference, model.TransactionStatusPending).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

// Fail moves PENDING -> FAILED under the same single-winner guard as Settle.
func (r *Transaction) Fail(ctx context.Context, reference string, reason string) error {
	db := GetTx(ctx, r.db)
	result := db.Model(&model.Transaction{}).
		Where("reference = ? AND status = ?", reference, model.TransactionStatusPending).
		Updates(map[string]any{
			"status":         model.TransactionStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (r *Transaction) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Transaction, error) {
	var transactions []model.Transaction

	db := GetTx(ctx, r.db)
	err := db.Where("kind = ? AND status = ? AND created_at < ?",
		model.TransactionKindWithdrawal, model.TransactionStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
