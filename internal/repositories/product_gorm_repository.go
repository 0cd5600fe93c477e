package repositories

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pasarhub/internal/models"
	"pasarhub/internal/pricing"
)

// likeEscaper neutralizes LIKE metacharacters in user-supplied filter
// values so that "100%_cotton" matches only its literal text.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Popularity-score floors for the named buckets.
var popularityBucketFloors = map[string]int{
	"rising":  100,
	"popular": 500,
	"hot":     1000,
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) withAssociations() *gorm.DB {
	return r.db.
		Preload("Variants").
		Preload("Specifications").
		Preload("ProductDiscount").
		Preload("NewArrivalDiscount").
		Preload("Vendor")
}

// GetByID retrieves a single product with its associations.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.withAssociations().First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetBySlug retrieves an approved product by slug. Unapproved products
// are invisible to buyers, so they come back as not found.
func (r *GORMProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	err := r.withAssociations().
		Where("admin_approval_status = ?", models.ApprovalStatusApproved).
		First(&product, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with slug %s: %w", slug, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get product by slug %s: %w", slug, err)
	}
	return &product, nil
}

// Search executes the catalog filter over approved products. Price sort
// keys are applied after the fetch because the display price is a
// derived per-row minimum over variants, which the store cannot order
// by.
func (r *GORMProductRepository) Search(filter ProductFilter) ([]models.Product, error) {
	q := r.withAssociations().
		Where("admin_approval_status = ?", models.ApprovalStatusApproved)

	if filter.Category != "" {
		q = q.Where("category_slug = ?", filter.Category)
	}
	if len(filter.Subcategories) > 0 {
		q = q.Where("subcategory_slug IN ?", filter.Subcategories)
	}
	if pr := filter.PriceRange; pr != nil {
		// Base price OR any variant price in range.
		q = q.Where(
			"(price BETWEEN ? AND ?) OR id IN (?)",
			pr.Min, pr.Max,
			r.db.Model(&models.ProductVariant{}).
				Select("product_id").
				Where("price BETWEEN ? AND ?", pr.Min, pr.Max),
		)
	}
	for attribute, values := range filter.Specifications {
		if len(values) == 0 {
			continue
		}
		// Values are stored as a JSON array in a text column; matching
		// the quoted literal keeps this portable across postgres and
		// the sqlite test store.
		spec := r.db.Model(&models.ProductSpecification{}).
			Select("product_id").
			Where("attribute = ?", attribute)
		var likes []string
		var args []interface{}
		for _, v := range values {
			likes = append(likes, `"values" LIKE ? ESCAPE '\'`)
			args = append(args, "%"+likeEscaper.Replace(fmt.Sprintf("%q", v))+"%")
		}
		spec = spec.Where(strings.Join(likes, " OR "), args...)
		q = q.Where("id IN (?)", spec)
	}
	if len(filter.PopularityBuckets) > 0 {
		floor := 0
		for i, bucket := range filter.PopularityBuckets {
			if f, ok := popularityBucketFloors[bucket]; ok && (i == 0 || f < floor) {
				floor = f
			}
		}
		q = q.Where("popularity_score >= ?", floor)
	}
	if filter.MinRating != nil {
		q = q.Where("average_rating >= ?", *filter.MinRating)
	}

	switch filter.Sort {
	case SortBestSeller:
		q = q.Order("sold_count DESC")
	case SortMostPopular:
		q = q.Order("popularity_score DESC")
	case SortPriceAsc, SortPriceDesc:
		// Sorted in Go below.
	default:
		q = q.Order("created_at DESC")
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	if filter.Sort == SortPriceAsc || filter.Sort == SortPriceDesc {
		asc := filter.Sort == SortPriceAsc
		sort.SliceStable(products, func(i, j int) bool {
			pi := pricing.DisplayPrice(&products[i])
			pj := pricing.DisplayPrice(&products[j])
			if asc {
				return pi.LessThan(pj)
			}
			return pj.LessThan(pi)
		})
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for i := range product.Variants {
		if product.Variants[i].ID == "" {
			product.Variants[i].ID = uuid.New().String()
		}
	}
	for i := range product.Specifications {
		if product.Specifications[i].ID == "" {
			product.Specifications[i].ID = uuid.New().String()
		}
	}
	if product.ProductDiscount != nil && product.ProductDiscount.ID == "" {
		product.ProductDiscount.ID = uuid.New().String()
	}
	if product.NewArrivalDiscount != nil && product.NewArrivalDiscount.ID == "" {
		product.NewArrivalDiscount.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for update", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for deletion", id)
	}
	return nil
}

// RecordView inserts the (product, ip) view-log row. The composite
// unique index rejects repeats; a conflict means this address already
// counted and is reported as not-new rather than as an error.
func (r *GORMProductRepository) RecordView(productID, ip string) (bool, error) {
	view := models.ProductView{
		ID:        uuid.New().String(),
		ProductID: productID,
		IP:        ip,
		CreatedAt: time.Now(),
	}
	res := r.db.Where(models.ProductView{ProductID: productID, IP: ip}).
		FirstOrCreate(&view)
	if res.Error != nil {
		return false, fmt.Errorf("failed to record product view: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IncrementPopularity bumps the popularity score by one.
func (r *GORMProductRepository) IncrementPopularity(productID string) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("popularity_score", gorm.Expr("popularity_score + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment popularity for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for popularity update", productID)
	}
	return nil
}
