package repositories_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
)

func buildAddress(userID, label string, isDefault bool) *models.Address {
	return &models.Address{
		ID:         uuid.New().String(),
		UserID:     userID,
		Label:      label,
		Recipient:  "Budi Santoso",
		Phone:      "+62811111111",
		Line1:      "Jl. Merdeka 1",
		City:       "Bandung",
		Province:   "Jawa Barat",
		PostalCode: "40111",
		IsDefault:  isDefault,
	}
}

func defaultCount(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&count).Error)
	return count
}

func TestAddressCreate_NewDefaultDemotesOldOne(t *testing.T) {
	db := newRepoTestDB(t)
	repo := repositories.NewGORMAddressRepository(db)

	home := buildAddress("user-1", "home", true)
	require.NoError(t, repo.Create(home))
	office := buildAddress("user-1", "office", true)
	require.NoError(t, repo.Create(office))

	assert.EqualValues(t, 1, defaultCount(t, db, "user-1"))

	reloaded, err := repo.GetByID(home.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)
}

func TestAddressUpdate_PromotionKeepsSingleDefault(t *testing.T) {
	db := newRepoTestDB(t)
	repo := repositories.NewGORMAddressRepository(db)

	home := buildAddress("user-1", "home", true)
	require.NoError(t, repo.Create(home))
	office := buildAddress("user-1", "office", false)
	require.NoError(t, repo.Create(office))

	office.IsDefault = true
	require.NoError(t, repo.Update(office))

	assert.EqualValues(t, 1, defaultCount(t, db, "user-1"))
	reloaded, err := repo.GetByID(office.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDefault)
}

func TestAddressDefault_IsScopedPerUser(t *testing.T) {
	db := newRepoTestDB(t)
	repo := repositories.NewGORMAddressRepository(db)

	require.NoError(t, repo.Create(buildAddress("user-1", "home", true)))
	require.NoError(t, repo.Create(buildAddress("user-2", "home", true)))

	assert.EqualValues(t, 1, defaultCount(t, db, "user-1"))
	assert.EqualValues(t, 1, defaultCount(t, db, "user-2"))
}

func TestAddressDelete_DefaultIsNotPromoted(t *testing.T) {
	db := newRepoTestDB(t)
	repo := repositories.NewGORMAddressRepository(db)

	home := buildAddress("user-1", "home", true)
	require.NoError(t, repo.Create(home))
	require.NoError(t, repo.Create(buildAddress("user-1", "office", false)))

	require.NoError(t, repo.Delete(home.ID))

	// Deleting the default leaves the user with none; the remaining
	// address stays non-default until explicitly promoted.
	assert.EqualValues(t, 0, defaultCount(t, db, "user-1"))
}

func TestAddressListByUser_DefaultFirst(t *testing.T) {
	db := newRepoTestDB(t)
	repo := repositories.NewGORMAddressRepository(db)

	require.NoError(t, repo.Create(buildAddress("user-1", "office", false)))
	require.NoError(t, repo.Create(buildAddress("user-1", "home", true)))
	require.NoError(t, repo.Create(buildAddress("user-2", "foreign", true)))

	addresses, err := repo.ListByUser("user-1")
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, "home", addresses[0].Label)
	assert.True(t, addresses[0].IsDefault)
}
