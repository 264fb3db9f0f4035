package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"armory/internal/model"
)

// EquipmentRepository defines equipment registry persistence operations.
type EquipmentRepository interface {
	Create(ctx context.Context, item *model.Equipment) error
	UpdateDetails(ctx context.Context, item *model.Equipment) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Equipment, error)
	FindByQRToken(ctx context.Context, token string) (*model.Equipment, error)
	FindByQRTokenForUpdate(ctx context.Context, token string) (*model.Equipment, error)
	ExistsByQRToken(ctx context.Context, token string) (bool, error)
	List(ctx context.Context) ([]model.Equipment, error)
	ListByHolder(ctx context.Context, userID uint) ([]model.Equipment, error)
	// Transition moves an item from one status/holder pair to another and
	// reports whether the expected current state still held.
	Transition(ctx context.Context, id uint, from model.EquipmentStatus, fromHolder *uint, to model.EquipmentStatus, toHolder *uint) (bool, error)
}

type equipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates a new equipment repository.
func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

// Create creates a new equipment item.
func (r *equipmentRepository) Create(ctx context.Context, item *model.Equipment) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}

// UpdateDetails saves name and category only; status and holder belong to Transition.
func (r *equipmentRepository) UpdateDetails(ctx context.Context, item *model.Equipment) error {
	res := r.db.WithContext(ctx).Model(&model.Equipment{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":     item.Name,
			"category": item.Category,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an item together with its audit entries.
func (r *equipmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&model.InventoryLogEntry{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Equipment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FindByID finds an equipment item by ID.
func (r *equipmentRepository) FindByID(ctx context.Context, id uint) (*model.Equipment, error) {
	var item model.Equipment
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByQRToken finds an equipment item by its QR token.
func (r *equipmentRepository) FindByQRToken(ctx context.Context, token string) (*model.Equipment, error) {
	var item model.Equipment
	if err := r.db.WithContext(ctx).Where("qr_token = ?", token).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByQRTokenForUpdate finds an item by QR token with a row-level lock.
// Only meaningful inside a transaction.
func (r *equipmentRepository) FindByQRTokenForUpdate(ctx context.Context, token string) (*model.Equipment, error) {
	var item model.Equipment
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("qr_token = ?", token).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *equipmentRepository) ExistsByQRToken(ctx context.Context, token string) (bool, error) {
	_, err := r.FindByQRToken(ctx, token)
	return exists(err)
}

// List returns every item ordered by ID.
func (r *equipmentRepository) List(ctx context.Context) ([]model.Equipment, error) {
	var items []model.Equipment
	if err := r.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByHolder returns the items currently assigned to userID.
func (r *equipmentRepository) ListByHolder(ctx context.Context, userID uint) ([]model.Equipment, error) {
	var items []model.Equipment
	if err := r.db.WithContext(ctx).Where("assigned_to = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Transition performs a compare-and-set update of status and holder.
func (r *equipmentRepository) Transition(ctx context.Context, id uint, from model.EquipmentStatus, fromHolder *uint, to model.EquipmentStatus, toHolder *uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Equipment{}).Where("id = ? AND status = ?", id, from)
	if fromHolder == nil {
		q = q.Where("assigned_to IS NULL")
	} else {
		q = q.Where("assigned_to = ?", *fromHolder)
	}

	res := q.Updates(map[string]interface{}{
		"status":      to,
		"assigned_to": toHolder,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
