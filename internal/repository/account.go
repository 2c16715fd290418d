package repository

import (
	"context"
	"errors"

	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var ErrAccountNotFound = errors.New("ACCOUNT_NOT_FOUND")
var ErrAccountExists = errors.New("ACCOUNT_EXISTS")

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id string) (model.Account, error)
	DebitIfSufficient(ctx context.Context, id string, amount int64) error
	Credit(ctx context.Context, id string, amount int64) error
}

type Account struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &Account{db: db}
}

func (r *Account) Create(ctx context.Context, account *model.Account) error {
	db := GetTx(ctx, r.db)
	err := db.Create(account).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrAccountExists
	}

	return err
}

func (r *Account) FindByID(ctx context.Context, id string) (model.Account, error) {
	var account model.Account

	db := GetTx(ctx, r.db)
	err := db.Where("id = ?", id).First(&account).Error
	if err == nil {
		return account, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Account{}, ErrAccountNotFound
	}

	return model.Account{}, err
}

// DebitIfSufficient applies the balance check and the decrement in a single
// conditional UPDATE. A stale read can never drive the balance negative:
// when the guard does not hold the update touches zero rows and the caller
// gets ErrNoRowsAffected.
func (r *Account) DebitIfSufficient(ctx context.Context, id string, amount int64) error {
	db := GetTx(ctx, r.db)
	result := db.Model(&model.Account{}).
		Where("id = ? AND available_balance >= ?", id, amount).
		Update("available_balance", gorm.Expr("available_balance - ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (r *Account) Credit(ctx context.Context, id string, amount int64) error {
	db := GetTx(ctx, r.db)
	result := db.Model(&model.Account{}).
		Where("id = ?", id).
		Update("available_balance", gorm.Expr("available_balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}
