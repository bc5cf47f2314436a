package service

import (
	"context"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cache keys for catalog reads
const (
	cacheKeyProducts        = "catalog:products"
	cacheKeyCourses         = "catalog:courses"
	cacheKeyCategories      = "catalog:categories"
	cacheKeyPricingPlans    = "catalog:pricing-plans"
	cacheKeyFAQs            = "catalog:faqs"
	cacheKeyTestimonials    = "catalog:testimonials"
	cacheKeyLandingSections = "catalog:landing-sections"
	cacheKeyPaymentSettings = "catalog:payment-settings"
)

// recognizedIcons is the explicit registry of category icons. Icon names are
// validated at data-entry time; anything unrecognized falls back to
// fallbackIcon instead of being resolved ad hoc at render time.
var recognizedIcons = map[string]struct{}{
	"Star": {}, "Book": {}, "Code": {}, "Palette": {}, "Camera": {},
	"Music": {}, "Briefcase": {}, "Globe": {}, "Heart": {}, "Zap": {},
	"TrendingUp": {}, "ShoppingBag": {}, "GraduationCap": {}, "Laptop": {},
}

const fallbackIcon = "Star"

// NormalizeIcon returns the icon name if recognized, the fallback otherwise
func NormalizeIcon(name string) string {
	if _, ok := recognizedIcons[name]; ok {
		return name
	}
	return fallbackIcon
}

// CatalogService handles catalog reads (cache-aside) and admin mutations
// (write through then invalidate).
type CatalogService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client, ttl time.Duration) *CatalogService {
	return &CatalogService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
		ttl:    ttl,
	}
}

// GetProduct retrieves a single product, read through the cache
func (cs *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	key := cacheKeyProducts + ":" + id

	var cached models.Product
	hit, err := cs.redis.GetJSON(ctx, key, &cached)
	if err != nil {
		cs.logger.Warn("Product cache read failed", zap.String("id", id), zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("product").Inc()
		return &cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("product").Inc()

	product, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, key, product, cs.ttl); err != nil {
		cs.logger.Warn("Product cache write failed", zap.String("id", id), zap.Error(err))
	}
	return product, nil
}

// ListProducts lists products filtered by category. Only the unfiltered
// listing is cached; category filters hit the store directly.
func (cs *CatalogService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	if category != "" {
		return cs.store.GetProducts(ctx, category)
	}

	var cached []models.Product
	hit, err := cs.redis.GetJSON(ctx, cacheKeyProducts, &cached)
	if err != nil {
		cs.logger.Warn("Products cache read failed", zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("products").Inc()
		return cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("products").Inc()

	products, err := cs.store.GetProducts(ctx, "")
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, cacheKeyProducts, products, cs.ttl); err != nil {
		cs.logger.Warn("Products cache write failed", zap.Error(err))
	}
	return products, nil
}

// CreateProduct inserts a product and invalidates the product caches
func (cs *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := cs.store.CreateProduct(ctx, p); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("product", "create").Inc()
	cs.invalidate(ctx, cacheKeyProducts)
	return nil
}

// UpdateProduct updates a product and invalidates the product caches
func (cs *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := cs.store.UpdateProduct(ctx, p); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("product", "update").Inc()
	cs.invalidate(ctx, cacheKeyProducts, cacheKeyProducts+":"+p.ID)
	return nil
}

// DeleteProduct deletes a product and invalidates the product caches
func (cs *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := cs.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("product", "delete").Inc()
	cs.invalidate(ctx, cacheKeyProducts, cacheKeyProducts+":"+id)
	return nil
}

// GetCourse retrieves a single course
func (cs *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return cs.store.GetCourseByID(ctx, id)
}

// ListCourses lists courses filtered by category
func (cs *CatalogService) ListCourses(ctx context.Context, category string) ([]models.Course, error) {
	if category != "" {
		return cs.store.GetCourses(ctx, category)
	}

	var cached []models.Course
	hit, err := cs.redis.GetJSON(ctx, cacheKeyCourses, &cached)
	if err != nil {
		cs.logger.Warn("Courses cache read failed", zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("courses").Inc()
		return cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("courses").Inc()

	courses, err := cs.store.GetCourses(ctx, "")
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, cacheKeyCourses, courses, cs.ttl); err != nil {
		cs.logger.Warn("Courses cache write failed", zap.Error(err))
	}
	return courses, nil
}

// CreateCourse inserts a course
func (cs *CatalogService) CreateCourse(ctx context.Context, c *models.Course) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if err := cs.store.CreateCourse(ctx, c); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("course", "create").Inc()
	cs.invalidate(ctx, cacheKeyCourses)
	return nil
}

// UpdateCourse updates a course
func (cs *CatalogService) UpdateCourse(ctx context.Context, c *models.Course) error {
	if err := cs.store.UpdateCourse(ctx, c); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("course", "update").Inc()
	cs.invalidate(ctx, cacheKeyCourses)
	return nil
}

// DeleteCourse deletes a course
func (cs *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	if err := cs.store.DeleteCourse(ctx, id); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("course", "delete").Inc()
	cs.invalidate(ctx, cacheKeyCourses)
	return nil
}

// ListCategories lists all categories
func (cs *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	hit, err := cs.redis.GetJSON(ctx, cacheKeyCategories, &cached)
	if err != nil {
		cs.logger.Warn("Categories cache read failed", zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("categories").Inc()
		return cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("categories").Inc()

	categories, err := cs.store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, cacheKeyCategories, categories, cs.ttl); err != nil {
		cs.logger.Warn("Categories cache write failed", zap.Error(err))
	}
	return categories, nil
}

// CreateCategory inserts a category, normalizing its icon
func (cs *CatalogService) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.Icon = NormalizeIcon(c.Icon)
	if err := cs.store.CreateCategory(ctx, c); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("category", "create").Inc()
	cs.invalidate(ctx, cacheKeyCategories)
	return nil
}

// UpdateCategory updates a category, normalizing its icon
func (cs *CatalogService) UpdateCategory(ctx context.Context, c *models.Category) error {
	c.Icon = NormalizeIcon(c.Icon)
	if err := cs.store.UpdateCategory(ctx, c); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("category", "update").Inc()
	cs.invalidate(ctx, cacheKeyCategories)
	return nil
}

// DeleteCategory deletes a category
func (cs *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := cs.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("category", "delete").Inc()
	cs.invalidate(ctx, cacheKeyCategories)
	return nil
}

// ListPricingPlans lists pricing plans in display order
func (cs *CatalogService) ListPricingPlans(ctx context.Context) ([]models.PricingPlan, error) {
	var cached []models.PricingPlan
	hit, err := cs.redis.GetJSON(ctx, cacheKeyPricingPlans, &cached)
	if err != nil {
		cs.logger.Warn("Pricing plans cache read failed", zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("pricing_plans").Inc()
		return cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("pricing_plans").Inc()

	plans, err := cs.store.GetPricingPlans(ctx)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, cacheKeyPricingPlans, plans, cs.ttl); err != nil {
		cs.logger.Warn("Pricing plans cache write failed", zap.Error(err))
	}
	return plans, nil
}

// CreatePricingPlan inserts a pricing plan
func (cs *CatalogService) CreatePricingPlan(ctx context.Context, p *models.PricingPlan) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := cs.store.CreatePricingPlan(ctx, p); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("pricing_plan", "create").Inc()
	cs.invalidate(ctx, cacheKeyPricingPlans)
	return nil
}

// UpdatePricingPlan updates a pricing plan
func (cs *CatalogService) UpdatePricingPlan(ctx context.Context, p *models.PricingPlan) error {
	if err := cs.store.UpdatePricingPlan(ctx, p); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("pricing_plan", "update").Inc()
	cs.invalidate(ctx, cacheKeyPricingPlans)
	return nil
}

// DeletePricingPlan deletes a pricing plan
func (cs *CatalogService) DeletePricingPlan(ctx context.Context, id string) error {
	if err := cs.store.DeletePricingPlan(ctx, id); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("pricing_plan", "delete").Inc()
	cs.invalidate(ctx, cacheKeyPricingPlans)
	return nil
}

// ListFAQs lists FAQs in display order
func (cs *CatalogService) ListFAQs(ctx context.Context) ([]models.FAQ, error) {
	var cached []models.FAQ
	hit, err := cs.redis.GetJSON(ctx, cacheKeyFAQs, &cached)
	if err != nil {
		cs.logger.Warn("FAQs cache read failed", zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("faqs").Inc()
		return cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("faqs").Inc()

	faqs, err := cs.store.GetFAQs(ctx)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, cacheKeyFAQs, faqs, cs.ttl); err != nil {
		cs.logger.Warn("FAQs cache write failed", zap.Error(err))
	}
	return faqs, nil
}

// CreateFAQ inserts a FAQ
func (cs *CatalogService) CreateFAQ(ctx context.Context, f *models.FAQ) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if err := cs.store.CreateFAQ(ctx, f); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("faq", "create").Inc()
	cs.invalidate(ctx, cacheKeyFAQs)
	return nil
}

// UpdateFAQ updates a FAQ
func (cs *CatalogService) UpdateFAQ(ctx context.Context, f *models.FAQ) error {
	if err := cs.store.UpdateFAQ(ctx, f); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("faq", "update").Inc()
	cs.invalidate(ctx, cacheKeyFAQs)
	return nil
}

// DeleteFAQ deletes a FAQ
func (cs *CatalogService) DeleteFAQ(ctx context.Context, id string) error {
	if err := cs.store.DeleteFAQ(ctx, id); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("faq", "delete").Inc()
	cs.invalidate(ctx, cacheKeyFAQs)
	return nil
}

// ListTestimonials lists testimonials in display order
func (cs *CatalogService) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	var cached []models.Testimonial
	hit, err := cs.redis.GetJSON(ctx, cacheKeyTestimonials, &cached)
	if err != nil {
		cs.logger.Warn("Testimonials cache read failed", zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("testimonials").Inc()
		return cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("testimonials").Inc()

	testimonials, err := cs.store.GetTestimonials(ctx)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, cacheKeyTestimonials, testimonials, cs.ttl); err != nil {
		cs.logger.Warn("Testimonials cache write failed", zap.Error(err))
	}
	return testimonials, nil
}

// CreateTestimonial inserts a testimonial
func (cs *CatalogService) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if err := cs.store.CreateTestimonial(ctx, t); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("testimonial", "create").Inc()
	cs.invalidate(ctx, cacheKeyTestimonials)
	return nil
}

// UpdateTestimonial updates a testimonial
func (cs *CatalogService) UpdateTestimonial(ctx context.Context, t *models.Testimonial) error {
	if err := cs.store.UpdateTestimonial(ctx, t); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("testimonial", "update").Inc()
	cs.invalidate(ctx, cacheKeyTestimonials)
	return nil
}

// DeleteTestimonial deletes a testimonial
func (cs *CatalogService) DeleteTestimonial(ctx context.Context, id string) error {
	if err := cs.store.DeleteTestimonial(ctx, id); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("testimonial", "delete").Inc()
	cs.invalidate(ctx, cacheKeyTestimonials)
	return nil
}

// ListLandingSections lists landing sections grouped by type
func (cs *CatalogService) ListLandingSections(ctx context.Context) ([]models.LandingSection, error) {
	var cached []models.LandingSection
	hit, err := cs.redis.GetJSON(ctx, cacheKeyLandingSections, &cached)
	if err != nil {
		cs.logger.Warn("Landing sections cache read failed", zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("landing_sections").Inc()
		return cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("landing_sections").Inc()

	sections, err := cs.store.GetLandingSections(ctx)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, cacheKeyLandingSections, sections, cs.ttl); err != nil {
		cs.logger.Warn("Landing sections cache write failed", zap.Error(err))
	}
	return sections, nil
}

// CreateLandingSection inserts a landing section
func (cs *CatalogService) CreateLandingSection(ctx context.Context, ls *models.LandingSection) error {
	if ls.ID == "" {
		ls.ID = uuid.New().String()
	}
	if ls.Icon != "" {
		ls.Icon = NormalizeIcon(ls.Icon)
	}
	if err := cs.store.CreateLandingSection(ctx, ls); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("landing_section", "create").Inc()
	cs.invalidate(ctx, cacheKeyLandingSections)
	return nil
}

// UpdateLandingSection updates a landing section
func (cs *CatalogService) UpdateLandingSection(ctx context.Context, ls *models.LandingSection) error {
	if ls.Icon != "" {
		ls.Icon = NormalizeIcon(ls.Icon)
	}
	if err := cs.store.UpdateLandingSection(ctx, ls); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("landing_section", "update").Inc()
	cs.invalidate(ctx, cacheKeyLandingSections)
	return nil
}

// DeleteLandingSection deletes a landing section
func (cs *CatalogService) DeleteLandingSection(ctx context.Context, id string) error {
	if err := cs.store.DeleteLandingSection(ctx, id); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("landing_section", "delete").Inc()
	cs.invalidate(ctx, cacheKeyLandingSections)
	return nil
}

// GetPaymentSettings retrieves the merchant payment configuration
func (cs *CatalogService) GetPaymentSettings(ctx context.Context) (*models.PaymentSettings, error) {
	var cached models.PaymentSettings
	hit, err := cs.redis.GetJSON(ctx, cacheKeyPaymentSettings, &cached)
	if err != nil {
		cs.logger.Warn("Payment settings cache read failed", zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("payment_settings").Inc()
		return &cached, nil
	}
	util.CatalogCacheMisses.WithLabelValues("payment_settings").Inc()

	settings, err := cs.store.GetPaymentSettings(ctx)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetJSON(ctx, cacheKeyPaymentSettings, settings, cs.ttl); err != nil {
		cs.logger.Warn("Payment settings cache write failed", zap.Error(err))
	}
	return settings, nil
}

// SavePaymentSettings upserts the merchant payment configuration
func (cs *CatalogService) SavePaymentSettings(ctx context.Context, settings *models.PaymentSettings) error {
	if err := cs.store.UpsertPaymentSettings(ctx, settings); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("payment_settings", "update").Inc()
	cs.invalidate(ctx, cacheKeyPaymentSettings)
	return nil
}

// ClearQrisImage removes the stored QRIS image
func (cs *CatalogService) ClearQrisImage(ctx context.Context) error {
	if err := cs.store.ClearQrisImage(ctx); err != nil {
		return err
	}
	util.CatalogMutationsTotal.WithLabelValues("payment_settings", "delete").Inc()
	cs.invalidate(ctx, cacheKeyPaymentSettings)
	return nil
}

func (cs *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if err := cs.redis.Invalidate(ctx, keys...); err != nil {
		cs.logger.Warn("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
