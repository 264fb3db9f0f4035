package repository

import (
	"context"

	"gorm.io/gorm"
)

// Tx groups the repositories that share one database transaction.
type Tx struct {
	Equipment EquipmentRepository
	Logs      InventoryLogRepository
}

// TxManager runs work inside a database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over db.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

// WithTransaction executes fn within a database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return m.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(ctx, Tx{
			Equipment: &equipmentRepository{db: gtx},
			Logs:      &inventoryLogRepository{db: gtx},
		})
	})
}
