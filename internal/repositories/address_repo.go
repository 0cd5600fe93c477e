package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pasarhub/internal/models"
)

// AddressRepository defines the interface for address data access.
type AddressRepository interface {
	ListByUser(userID string) ([]models.Address, error)
	GetByID(id string) (*models.Address, error)
	Create(address *models.Address) error
	Update(address *models.Address) error
	Delete(id string) error
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{
		db: db,
	}
}

// ListByUser retrieves a user's addresses, default first.
func (r *GORMAddressRepository) ListByUser(userID string) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses for user %s: %w", userID, err)
	}
	return addresses, nil
}

// GetByID retrieves a single address by its ID.
func (r *GORMAddressRepository) GetByID(id string) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("address with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get address by ID %s: %w", id, err)
	}
	return &address, nil
}

// Create inserts the address. When it is flagged as default, every
// other default owned by the same user is unset in the same
// transaction, keeping at most one default per user.
func (r *GORMAddressRepository) Create(address *models.Address) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := unsetOtherDefaults(tx, address.UserID, address.ID); err != nil {
				return err
			}
		}
		if err := tx.Create(address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
}

// Update saves the address, enforcing the single-default invariant the
// same way Create does.
func (r *GORMAddressRepository) Update(address *models.Address) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := unsetOtherDefaults(tx, address.UserID, address.ID); err != nil {
				return err
			}
		}
		res := tx.Save(address)
		if res.Error != nil {
			return fmt.Errorf("failed to update address: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("address with ID %s not found for update", address.ID)
		}
		return nil
	})
}

// Delete removes an address. Deleting the current default leaves the
// user with no default; no other address is promoted.
func (r *GORMAddressRepository) Delete(id string) error {
	res := r.db.Delete(&models.Address{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %s not found for deletion", id)
	}
	return nil
}

func unsetOtherDefaults(tx *gorm.DB, userID, keepID string) error {
	err := tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ?", userID, keepID).
		UpdateColumn("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to unset other default addresses: %w", err)
	}
	return nil
}
