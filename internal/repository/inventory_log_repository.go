package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"armory/internal/model"
)

// InventoryLogRepository is the append-only audit store.
type InventoryLogRepository interface {
	Append(ctx context.Context, entry *model.InventoryLogEntry) error
	ListByUser(ctx context.Context, userID uint) ([]model.InventoryLogEntry, error)
	FindByIDForUser(ctx context.Context, id, userID uint) (*model.InventoryLogEntry, error)
	CountByItem(ctx context.Context, itemID uint) (int64, error)
}

type inventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository creates a new audit log repository.
func NewInventoryLogRepository(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepository{db: db}
}

// Append inserts an entry; the timestamp is assigned by the repository.
func (r *inventoryLogRepository) Append(ctx context.Context, entry *model.InventoryLogEntry) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

// ListByUser returns the user's entries, newest first.
func (r *inventoryLogRepository) ListByUser(ctx context.Context, userID uint) ([]model.InventoryLogEntry, error) {
	var entries []model.InventoryLogEntry
	err := r.db.WithContext(ctx).
		Preload("Item").Preload("User").
		Where("user_id = ?", userID).
		Order("timestamp DESC").Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByIDForUser returns one entry only when it belongs to userID.
func (r *inventoryLogRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*model.InventoryLogEntry, error) {
	var entry model.InventoryLogEntry
	err := r.db.WithContext(ctx).
		Preload("Item").Preload("User").
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountByItem returns how many entries reference itemID.
func (r *inventoryLogRepository) CountByItem(ctx context.Context, itemID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InventoryLogEntry{}).Where("item_id = ?", itemID).Count(&count).Error
	return count, err
}
