package service

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"armory/internal/cache"
	apperrors "armory/internal/errors"
	"armory/internal/model"
	"armory/internal/repository"
)

func newEquipmentService(gormDB *gorm.DB) *equipmentService {
	return NewEquipmentService(repository.NewEquipmentRepository(gormDB)).(*equipmentService)
}

func TestEquipmentService_Create(t *testing.T) {
	gormDB := newTestDB(t)
	svc := newEquipmentService(gormDB)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     EquipmentInput
		wantField string
		wantKind  error
	}{
		{name: "supplied token", input: EquipmentInput{Name: "Rifle", Category: "gun", QRToken: "qr-rifle"}},
		{name: "generated token", input: EquipmentInput{Name: "Ammo box", Category: "ammo"}},
		{name: "missing name", input: EquipmentInput{Category: "gun"}, wantField: "name"},
		{name: "unknown category", input: EquipmentInput{Name: "Tank", Category: "vehicle"}, wantField: "category"},
		{name: "duplicate token", input: EquipmentInput{Name: "Other", Category: "gun", QRToken: "qr-rifle"}, wantKind: apperrors.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := svc.Create(ctx, tt.input)
			switch {
			case tt.wantField != "":
				var verr *apperrors.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.wantField)
			case tt.wantKind != nil:
				assert.ErrorIs(t, err, tt.wantKind)
			default:
				require.NoError(t, err)
				assert.NotZero(t, item.ID)
				assert.NotEmpty(t, item.QRToken)
				assert.Equal(t, model.StatusAvailable, item.Status)
				assert.Nil(t, item.AssignedTo)
				if tt.input.QRToken != "" {
					assert.Equal(t, tt.input.QRToken, item.QRToken)
				}
			}
		})
	}
}

func TestEquipmentService_CreateRetriesTokenCollision(t *testing.T) {
	gormDB := newTestDB(t)
	seedItem(t, gormDB, "Rifle", "taken")
	svc := newEquipmentService(gormDB)

	candidates := []string{"taken", "free"}
	svc.newToken = func() string {
		next := candidates[0]
		candidates = candidates[1:]
		return next
	}

	item, err := svc.Create(context.Background(), EquipmentInput{Name: "Pistol", Category: "gun"})
	require.NoError(t, err)
	assert.Equal(t, "free", item.QRToken)
}

func TestEquipmentService_UpdateGetDelete(t *testing.T) {
	gormDB := newTestDB(t)
	alice := seedUser(t, gormDB, "alice")
	rifle := seedItem(t, gormDB, "Rifle", "qr-rifle")
	svc := newEquipmentService(gormDB)
	ctx := context.Background()

	_, err := newInventoryService(t, gormDB, nil).Scan(ctx, "qr-rifle", alice.ID, "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, rifle.ID, EquipmentInput{Name: "Sniper rifle", Category: "gun"})
	require.NoError(t, err)
	assert.Equal(t, "Sniper rifle", updated.Name)
	assert.Equal(t, model.StatusWithdrawn, updated.Status)
	assert.True(t, updated.IsHeldBy(alice.ID))

	held, err := svc.ListByHolder(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, held, 1)

	_, err = svc.Update(ctx, 9999, EquipmentInput{Name: "Ghost", Category: "gun"})
	assert.Equal(t, ErrEquipmentNotFound, err)

	require.NoError(t, svc.Delete(ctx, rifle.ID))
	_, err = svc.Get(ctx, rifle.ID)
	assert.Equal(t, ErrEquipmentNotFound, err)
	assert.Equal(t, ErrEquipmentNotFound, svc.Delete(ctx, rifle.ID))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLogService_OwnershipScoped(t *testing.T) {
	gormDB := newTestDB(t)
	alice := seedUser(t, gormDB, "alice")
	bob := seedUser(t, gormDB, "bob")
	seedItem(t, gormDB, "Rifle", "qr-rifle")
	ctx := context.Background()

	_, err := newInventoryService(t, gormDB, nil).Scan(ctx, "qr-rifle", alice.ID, "")
	require.NoError(t, err)

	svc := NewLogService(repository.NewInventoryLogRepository(gormDB))
	entries, err := svc.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Item)
	assert.Equal(t, "Rifle", entries[0].Item.Name)

	entry, err := svc.GetForUser(ctx, entries[0].ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionWithdraw, entry.Action)

	_, err = svc.GetForUser(ctx, entries[0].ID, bob.ID)
	assert.Equal(t, ErrLogEntryNotFound, err)

	none, err := svc.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserService_GetProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(4)).Return(&model.User{ID: 4, Username: "jdoe", FullName: "John Doe"}, nil)
	mockRepo.On("FindByID", mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)

	// unreachable redis behaves as a permanent miss
	unreachable := cache.Wrap(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
	t.Cleanup(func() { unreachable.Close() })

	for _, c := range []*cache.Client{nil, unreachable} {
		svc := NewUserService(mockRepo, c)

		user, err := svc.GetProfile(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, "jdoe", user.Username)

		_, err = svc.GetProfile(context.Background(), 5)
		assert.Equal(t, ErrUserNotFound, err)
	}
	mockRepo.AssertNumberOfCalls(t, "FindByID", 4)
}
