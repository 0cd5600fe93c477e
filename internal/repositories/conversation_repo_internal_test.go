package repositories

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pasarhub/internal/models"
)

func newConversationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Conversation{},
		&models.ParticipantConversation{},
		&models.Message{},
		&models.MessageSeen{},
	))
	return db
}

// Simulates losing the first-contact race: another request has already
// inserted the (user, vendor) row by the time our insert runs, so the
// unique pair index rejects it and we must hand back the winner's row.
func TestCreateOrRecover_ReturnsWinnerAfterLostInsert(t *testing.T) {
	db := newConversationTestDB(t)
	repo := NewGORMConversationRepository(db)

	userID := "buyer-1"
	vendorID := uuid.New().String()
	winner := models.Conversation{
		ID:       uuid.New().String(),
		UserID:   userID,
		VendorID: vendorID,
	}
	require.NoError(t, db.Create(&winner).Error)

	conversation, created, err := repo.createOrRecover(userID, vendorID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, conversation.ID)

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateOrRecover_CreatesWhenPairIsFree(t *testing.T) {
	db := newConversationTestDB(t)
	repo := NewGORMConversationRepository(db)

	conversation, created, err := repo.createOrRecover("buyer-1", uuid.New().String())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, conversation.ID)

	var participants int64
	require.NoError(t, db.Model(&models.ParticipantConversation{}).Count(&participants).Error)
	assert.EqualValues(t, 2, participants)
}
