package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
)

// AddressService manages a user's shipping addresses and the
// single-default invariant.
type AddressService struct {
	addressRepo repositories.AddressRepository
}

// NewAddressService creates a new AddressService.
func NewAddressService(addressRepo repositories.AddressRepository) *AddressService {
	return &AddressService{
		addressRepo: addressRepo,
	}
}

// ListAddresses returns the caller's addresses, default first.
func (s *AddressService) ListAddresses(userID string) ([]models.Address, error) {
	return s.addressRepo.ListByUser(userID)
}

// CreateAddress inserts an address for the caller. The first address a
// user creates becomes their default.
func (s *AddressService) CreateAddress(userID string, address *models.Address) error {
	address.UserID = userID
	existing, err := s.addressRepo.ListByUser(userID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		address.IsDefault = true
	}
	return s.addressRepo.Create(address)
}

// UpdateAddress saves changes to an address the caller owns.
func (s *AddressService) UpdateAddress(userID string, address *models.Address) error {
	owned, err := s.ownedAddress(userID, address.ID)
	if err != nil {
		return err
	}
	address.UserID = owned.UserID
	address.CreatedAt = owned.CreatedAt
	return s.addressRepo.Update(address)
}

// DeleteAddress removes an address the caller owns. Deleting the
// current default leaves the user with no default; nothing is
// auto-promoted.
func (s *AddressService) DeleteAddress(userID, addressID string) error {
	if _, err := s.ownedAddress(userID, addressID); err != nil {
		return err
	}
	return s.addressRepo.Delete(addressID)
}

// SetDefaultAddress makes the given address the caller's only default.
func (s *AddressService) SetDefaultAddress(userID, addressID string) error {
	address, err := s.ownedAddress(userID, addressID)
	if err != nil {
		return err
	}
	address.IsDefault = true
	return s.addressRepo.Update(address)
}

func (s *AddressService) ownedAddress(userID, addressID string) (*models.Address, error) {
	address, err := s.addressRepo.GetByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("address %s: %w", addressID, ErrAddressNotFound)
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, fmt.Errorf("address %s: %w", addressID, ErrAddressNotFound)
	}
	return address, nil
}
