package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"armory/internal/db"
	"armory/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "armory_test.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, false))
	return gormDB
}

func seedUser(t *testing.T, repo UserRepository, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		IdentityCode: "code-" + username,
		FullName:     "Test " + username,
		Rank:         "Sergeant",
		Unit:         "Alpha",
		Role:         model.RoleMilitaryPersonnel,
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	seedUser(t, repo, "alice")

	tests := []struct {
		name string
		user *model.User
	}{
		{
			name: "duplicate username",
			user: &model.User{Username: "alice", Email: "other@example.com", IdentityCode: "c1", PasswordHash: "h"},
		},
		{
			name: "duplicate email",
			user: &model.User{Username: "bob", Email: "alice@example.com", IdentityCode: "c2", PasswordHash: "h"},
		},
		{
			name: "duplicate identity code",
			user: &model.User{Username: "carol", Email: "carol@example.com", IdentityCode: "code-alice", PasswordHash: "h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	alice := seedUser(t, repo, "alice")

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byCode, err := repo.FindByIdentityCode(ctx, "code-alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byCode.ID)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	ok, err := repo.ExistsByIdentityCode(ctx, "code-alice")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ExistsByIdentityCode(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ExistsByUsernameOrEmail(ctx, "someone", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEquipmentRepository_TransitionIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	repo := NewEquipmentRepository(gormDB)
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	item := &model.Equipment{Name: "M4", Category: model.CategoryGun, QRToken: "qr-m4", Status: model.StatusAvailable}
	require.NoError(t, repo.Create(ctx, item))

	ok, err := repo.Transition(ctx, item.ID, model.StatusAvailable, nil, model.StatusWithdrawn, &alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// stale expectation: item is no longer available
	ok, err = repo.Transition(ctx, item.ID, model.StatusAvailable, nil, model.StatusWithdrawn, &bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// wrong holder
	ok, err = repo.Transition(ctx, item.ID, model.StatusWithdrawn, &bob.ID, model.StatusAvailable, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	held, err := repo.ListByHolder(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, model.StatusWithdrawn, held[0].Status)

	ok, err = repo.Transition(ctx, item.ID, model.StatusWithdrawn, &alice.ID, model.StatusAvailable, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByQRToken(ctx, "qr-m4")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, reloaded.Status)
	assert.Nil(t, reloaded.AssignedTo)
}

func TestEquipmentRepository_UpdateDetailsLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	alice := seedUser(t, NewUserRepository(gormDB), "alice")
	repo := NewEquipmentRepository(gormDB)

	item := &model.Equipment{Name: "C4", Category: model.CategoryExplosive, QRToken: "qr-c4", Status: model.StatusAvailable}
	require.NoError(t, repo.Create(ctx, item))
	_, err := repo.Transition(ctx, item.ID, model.StatusAvailable, nil, model.StatusWithdrawn, &alice.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateDetails(ctx, &model.Equipment{ID: item.ID, Name: "C4 block", Category: model.CategoryExplosive, Status: model.StatusAvailable}))

	reloaded, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "C4 block", reloaded.Name)
	assert.Equal(t, model.StatusWithdrawn, reloaded.Status)
	require.NotNil(t, reloaded.AssignedTo)
	assert.Equal(t, alice.ID, *reloaded.AssignedTo)

	err = repo.UpdateDetails(ctx, &model.Equipment{ID: 9999, Name: "x", Category: model.CategoryAmmo})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEquipmentRepository_DeleteCascadesLogs(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	alice := seedUser(t, NewUserRepository(gormDB), "alice")
	repo := NewEquipmentRepository(gormDB)
	logs := NewInventoryLogRepository(gormDB)

	item := &model.Equipment{Name: "9mm box", Category: model.CategoryAmmo, QRToken: "qr-9mm", Status: model.StatusAvailable}
	require.NoError(t, repo.Create(ctx, item))
	require.NoError(t, logs.Append(ctx, &model.InventoryLogEntry{ItemID: item.ID, UserID: alice.ID, Action: model.ActionWithdraw}))

	require.NoError(t, repo.Delete(ctx, item.ID))

	count, err := logs.CountByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), gorm.ErrRecordNotFound)
}

func TestInventoryLogRepository_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	items := NewEquipmentRepository(gormDB)
	logs := NewInventoryLogRepository(gormDB)

	item := &model.Equipment{Name: "Grenade", Category: model.CategoryExplosive, QRToken: "qr-g", Status: model.StatusAvailable}
	require.NoError(t, items.Create(ctx, item))

	first := &model.InventoryLogEntry{ItemID: item.ID, UserID: alice.ID, Action: model.ActionWithdraw}
	require.NoError(t, logs.Append(ctx, first))
	second := &model.InventoryLogEntry{ItemID: item.ID, UserID: alice.ID, Action: model.ActionReturn, Notes: "cleaned"}
	require.NoError(t, logs.Append(ctx, second))
	require.NoError(t, logs.Append(ctx, &model.InventoryLogEntry{ItemID: item.ID, UserID: bob.ID, Action: model.ActionWithdraw}))

	entries, err := logs.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	require.NotNil(t, entries[0].Item)
	assert.Equal(t, "Grenade", entries[0].Item.Name)
	require.NotNil(t, entries[0].User)
	assert.Equal(t, "alice", entries[0].User.Username)
	assert.False(t, entries[0].Timestamp.IsZero())

	_, err = logs.FindByIDForUser(ctx, second.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	own, err := logs.FindByIDForUser(ctx, second.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "cleaned", own.Notes)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	alice := seedUser(t, NewUserRepository(gormDB), "alice")
	items := NewEquipmentRepository(gormDB)
	logs := NewInventoryLogRepository(gormDB)

	item := &model.Equipment{Name: "Pistol", Category: model.CategoryGun, QRToken: "qr-p", Status: model.StatusAvailable}
	require.NoError(t, items.Create(ctx, item))

	boom := assert.AnError
	err := NewTxManager(gormDB).WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		ok, err := tx.Equipment.Transition(ctx, item.ID, model.StatusAvailable, nil, model.StatusWithdrawn, &alice.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, tx.Logs.Append(ctx, &model.InventoryLogEntry{ItemID: item.ID, UserID: alice.ID, Action: model.ActionWithdraw}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, reloaded.Status)
	assert.Nil(t, reloaded.AssignedTo)
	count, err := logs.CountByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
