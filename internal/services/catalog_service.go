package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/repositories"
)

const (
	productCacheTTL = 5 * time.Minute
	viewDedupTTL    = 24 * time.Hour
)

// CatalogService handles product browsing: search, detail fetch, and
// the per-(product, IP) popularity accounting behind detail views.
type CatalogService struct {
	productRepo repositories.ProductRepository
	cache       *redis.Client
}

// NewCatalogService creates a new CatalogService. cache may be nil;
// caching and the fast view-dedup path are then skipped.
func NewCatalogService(productRepo repositories.ProductRepository, cache *redis.Client) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		cache:       cache,
	}
}

// Search runs the validated catalog filter over approved products.
func (s *CatalogService) Search(filter repositories.ProductFilter) ([]models.Product, error) {
	return s.productRepo.Search(filter)
}

// GetProductBySlug returns an approved product and counts the view
// towards its popularity score, at most once per (product, IP). Redis
// fronts the view-log table so repeat views from the same address
// don't hit the store; the unique view-log row remains the source of
// truth when redis is cold or absent.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug, ip string) (*models.Product, error) {
	if cached := s.cachedProduct(ctx, slug); cached != nil {
		s.countView(ctx, cached.ID, ip)
		return cached, nil
	}

	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", slug, ErrProductNotFound)
		}
		return nil, err
	}

	s.cacheProduct(ctx, slug, product)
	s.countView(ctx, product.ID, ip)
	return product, nil
}

// countView increments the popularity score when this is the first
// view of the product from the address. Failures only log; a broken
// counter must not break the detail page.
func (s *CatalogService) countView(ctx context.Context, productID, ip string) {
	if ip == "" {
		return
	}
	if s.cache != nil {
		key := fmt.Sprintf("view:%s:%s", productID, ip)
		set, err := s.cache.SetNX(ctx, key, 1, viewDedupTTL).Result()
		if err == nil && !set {
			// Already counted recently from this address.
			return
		}
	}
	isNew, err := s.productRepo.RecordView(productID, ip)
	if err != nil {
		log.Printf("Failed to record view for product %s: %v", productID, err)
		return
	}
	if !isNew {
		return
	}
	if err := s.productRepo.IncrementPopularity(productID); err != nil {
		log.Printf("Failed to bump popularity for product %s: %v", productID, err)
	}
}

func (s *CatalogService) cachedProduct(ctx context.Context, slug string) *models.Product {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, "product:"+slug).Bytes()
	if err != nil {
		return nil
	}
	var product models.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil
	}
	return &product
}

func (s *CatalogService) cacheProduct(ctx context.Context, slug string, product *models.Product) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, "product:"+slug, raw, productCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache product %s: %v", slug, err)
	}
}
