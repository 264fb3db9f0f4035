package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "armory/internal/errors"
	"armory/internal/model"
	"armory/internal/repository"
)

// ErrEquipmentNotFound is returned when no item has the requested ID.
var ErrEquipmentNotFound = apperrors.NotFound("Equipment not found")

// EquipmentInput carries the client-writable equipment fields.
type EquipmentInput struct {
	Name     string
	Category string
	QRToken  string
}

// EquipmentService is the equipment registry.
type EquipmentService interface {
	Create(ctx context.Context, input EquipmentInput) (*model.Equipment, error)
	Get(ctx context.Context, id uint) (*model.Equipment, error)
	List(ctx context.Context) ([]model.Equipment, error)
	ListByHolder(ctx context.Context, userID uint) ([]model.Equipment, error)
	Update(ctx context.Context, id uint, input EquipmentInput) (*model.Equipment, error)
	Delete(ctx context.Context, id uint) error
}

type equipmentService struct {
	repo     repository.EquipmentRepository
	newToken TokenFunc
}

// NewEquipmentService creates a new equipment registry service.
func NewEquipmentService(repo repository.EquipmentRepository) EquipmentService {
	return &equipmentService{repo: repo, newToken: NewOpaqueToken}
}

// Create registers an available, unassigned item. A QR token is generated
// when the client does not supply one.
func (s *equipmentService) Create(ctx context.Context, input EquipmentInput) (*model.Equipment, error) {
	category, err := validateEquipment(input)
	if err != nil {
		return nil, err
	}

	token := strings.TrimSpace(input.QRToken)
	if token == "" {
		token, err = uniqueToken(ctx, s.newToken, s.repo.ExistsByQRToken)
		if err != nil {
			return nil, fmt.Errorf("generate qr token: %w", err)
		}
	}

	item := &model.Equipment{
		Name:     strings.TrimSpace(input.Name),
		Category: category,
		QRToken:  token,
		Status:   model.StatusAvailable,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Equipment with this QR code already exists.")
		}
		return nil, fmt.Errorf("create equipment: %w", err)
	}
	return item, nil
}

func (s *equipmentService) Get(ctx context.Context, id uint) (*model.Equipment, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrEquipmentNotFound, "get equipment")
	}
	return item, nil
}

func (s *equipmentService) List(ctx context.Context) ([]model.Equipment, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

// ListByHolder returns what userID currently has checked out.
func (s *equipmentService) ListByHolder(ctx context.Context, userID uint) ([]model.Equipment, error) {
	items, err := s.repo.ListByHolder(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list equipment by holder: %w", err)
	}
	return items, nil
}

// Update changes name and category. Status and holder only change through Scan.
func (s *equipmentService) Update(ctx context.Context, id uint, input EquipmentInput) (*model.Equipment, error) {
	category, err := validateEquipment(input)
	if err != nil {
		return nil, err
	}

	item := &model.Equipment{ID: id, Name: strings.TrimSpace(input.Name), Category: category}
	if err := s.repo.UpdateDetails(ctx, item); err != nil {
		return nil, notFoundOr(err, ErrEquipmentNotFound, "update equipment")
	}
	return s.Get(ctx, id)
}

// Delete removes the item and its audit entries.
func (s *equipmentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, ErrEquipmentNotFound, "delete equipment")
	}
	return nil
}

func validateEquipment(input EquipmentInput) (model.Category, error) {
	verr := apperrors.NewValidationError()
	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "Name is required")
	}
	category, err := model.ParseCategory(input.Category)
	if err != nil {
		verr.Add("category", "Category must be one of: gun, ammo, explosive")
	}
	if verr.HasErrors() {
		return "", verr
	}
	return category, nil
}

// notFoundOr maps gorm.ErrRecordNotFound to notFound and wraps anything else.
func notFoundOr(err, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
