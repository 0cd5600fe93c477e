package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/services"
)

func approvedProduct() *models.Product {
	return &models.Product{
		ID:                  "prod-1",
		VendorID:            "vendor-1",
		Name:                "Rattan Chair",
		Slug:                "rattan-chair",
		AdminApprovalStatus: models.ApprovalStatusApproved,
	}
}

func TestGetProductBySlug_FirstViewBumpsPopularity(t *testing.T) {
	productRepo := new(MockProductRepository)
	service := services.NewCatalogService(productRepo, nil)

	productRepo.On("GetBySlug", "rattan-chair").Return(approvedProduct(), nil).Once()
	productRepo.On("RecordView", "prod-1", "203.0.113.7").Return(true, nil).Once()
	productRepo.On("IncrementPopularity", "prod-1").Return(nil).Once()

	product, err := service.GetProductBySlug(context.Background(), "rattan-chair", "203.0.113.7")

	require.NoError(t, err)
	assert.Equal(t, "prod-1", product.ID)
	productRepo.AssertExpectations(t)
}

func TestGetProductBySlug_RepeatViewDoesNotBump(t *testing.T) {
	productRepo := new(MockProductRepository)
	service := services.NewCatalogService(productRepo, nil)

	productRepo.On("GetBySlug", "rattan-chair").Return(approvedProduct(), nil).Once()
	productRepo.On("RecordView", "prod-1", "203.0.113.7").Return(false, nil).Once()

	_, err := service.GetProductBySlug(context.Background(), "rattan-chair", "203.0.113.7")

	require.NoError(t, err)
	productRepo.AssertNotCalled(t, "IncrementPopularity", "prod-1")
}

func TestGetProductBySlug_NoClientAddressSkipsCounting(t *testing.T) {
	productRepo := new(MockProductRepository)
	service := services.NewCatalogService(productRepo, nil)

	productRepo.On("GetBySlug", "rattan-chair").Return(approvedProduct(), nil).Once()

	_, err := service.GetProductBySlug(context.Background(), "rattan-chair", "")

	require.NoError(t, err)
	productRepo.AssertNotCalled(t, "RecordView", "prod-1", "")
}

func TestGetProductBySlug_UnknownSlug(t *testing.T) {
	productRepo := new(MockProductRepository)
	service := services.NewCatalogService(productRepo, nil)

	productRepo.On("GetBySlug", "tidak-ada").Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := service.GetProductBySlug(context.Background(), "tidak-ada", "203.0.113.7")

	assert.ErrorIs(t, err, services.ErrProductNotFound)
	productRepo.AssertNotCalled(t, "RecordView", "prod-1", "203.0.113.7")
}
