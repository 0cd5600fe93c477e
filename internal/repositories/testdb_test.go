package repositories_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pasarhub/internal/models"
)

// newRepoTestDB opens a per-test in-memory database with the full
// schema migrated.
func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Address{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductSpecification{},
		&models.ProductDiscount{},
		&models.NewArrivalDiscount{},
		&models.ProductView{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
		&models.Conversation{},
		&models.ParticipantConversation{},
		&models.Message{},
		&models.MessageSeen{},
		&models.AutomatedResponse{},
	))
	return db
}

func floatPtr(v float64) *float64 { return &v }
