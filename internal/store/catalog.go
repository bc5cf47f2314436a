package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"
)

// GetCategories retrieves all categories ordered by name
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY name")
	return categories, err
}

// CreateCategory inserts a new category
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (id, name, description, icon)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return s.db.GetContext(ctx, &c.CreatedAt, query, c.ID, c.Name, c.Description, c.Icon)
}

// UpdateCategory updates an existing category
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = $1, description = $2, icon = $3 WHERE id = $4",
		c.Name, c.Description, c.Icon, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "category", c.ID)
}

// DeleteCategory deletes a category
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "category", id)
}

// GetPricingPlans retrieves pricing plans ordered by display position
func (s *Store) GetPricingPlans(ctx context.Context) ([]models.PricingPlan, error) {
	var plans []models.PricingPlan
	err := s.db.SelectContext(ctx, &plans, "SELECT * FROM pricing_plans ORDER BY order_index")
	return plans, err
}

// CreatePricingPlan inserts a new pricing plan
func (s *Store) CreatePricingPlan(ctx context.Context, p *models.PricingPlan) error {
	query := `
		INSERT INTO pricing_plans (id, name, price, currency, billing_period, description, is_popular, features, cta_text, cta_link, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	return s.db.GetContext(ctx, &p.CreatedAt, query,
		p.ID, p.Name, p.Price, p.Currency, p.BillingPeriod, p.Description,
		p.IsPopular, p.Features, p.CTAText, p.CTALink, p.OrderIndex)
}

// UpdatePricingPlan updates an existing pricing plan
func (s *Store) UpdatePricingPlan(ctx context.Context, p *models.PricingPlan) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pricing_plans
		SET name = $1, price = $2, currency = $3, billing_period = $4, description = $5,
		    is_popular = $6, features = $7, cta_text = $8, cta_link = $9, order_index = $10
		WHERE id = $11`,
		p.Name, p.Price, p.Currency, p.BillingPeriod, p.Description,
		p.IsPopular, p.Features, p.CTAText, p.CTALink, p.OrderIndex, p.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "pricing plan", p.ID)
}

// DeletePricingPlan deletes a pricing plan
func (s *Store) DeletePricingPlan(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pricing_plans WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "pricing plan", id)
}

// GetFAQs retrieves FAQs ordered by display position
func (s *Store) GetFAQs(ctx context.Context) ([]models.FAQ, error) {
	var faqs []models.FAQ
	err := s.db.SelectContext(ctx, &faqs, "SELECT * FROM faqs ORDER BY order_index")
	return faqs, err
}

// CreateFAQ inserts a new FAQ
func (s *Store) CreateFAQ(ctx context.Context, f *models.FAQ) error {
	query := `
		INSERT INTO faqs (id, question, answer, order_index)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return s.db.GetContext(ctx, &f.CreatedAt, query, f.ID, f.Question, f.Answer, f.OrderIndex)
}

// UpdateFAQ updates an existing FAQ
func (s *Store) UpdateFAQ(ctx context.Context, f *models.FAQ) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE faqs SET question = $1, answer = $2, order_index = $3 WHERE id = $4",
		f.Question, f.Answer, f.OrderIndex, f.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "faq", f.ID)
}

// DeleteFAQ deletes a FAQ
func (s *Store) DeleteFAQ(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM faqs WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "faq", id)
}

// GetTestimonials retrieves testimonials ordered by display position
func (s *Store) GetTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	var testimonials []models.Testimonial
	err := s.db.SelectContext(ctx, &testimonials, "SELECT * FROM testimonials ORDER BY order_index")
	return testimonials, err
}

// CreateTestimonial inserts a new testimonial
func (s *Store) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	query := `
		INSERT INTO testimonials (id, name, role, company, content, avatar_url, rating, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return s.db.GetContext(ctx, &t.CreatedAt, query,
		t.ID, t.Name, t.Role, t.Company, t.Content, t.AvatarURL, t.Rating, t.OrderIndex)
}

// UpdateTestimonial updates an existing testimonial
func (s *Store) UpdateTestimonial(ctx context.Context, t *models.Testimonial) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE testimonials
		SET name = $1, role = $2, company = $3, content = $4, avatar_url = $5, rating = $6, order_index = $7
		WHERE id = $8`,
		t.Name, t.Role, t.Company, t.Content, t.AvatarURL, t.Rating, t.OrderIndex, t.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "testimonial", t.ID)
}

// DeleteTestimonial deletes a testimonial
func (s *Store) DeleteTestimonial(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM testimonials WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "testimonial", id)
}

// GetLandingSections retrieves landing sections ordered by type then position
func (s *Store) GetLandingSections(ctx context.Context) ([]models.LandingSection, error) {
	var sections []models.LandingSection
	err := s.db.SelectContext(ctx, &sections,
		"SELECT * FROM landing_sections ORDER BY section_type, order_index")
	return sections, err
}

// CreateLandingSection inserts a new landing section
func (s *Store) CreateLandingSection(ctx context.Context, ls *models.LandingSection) error {
	query := `
		INSERT INTO landing_sections (id, section_type, title, subtitle, description, image_url, link_url, icon, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return s.db.GetContext(ctx, &ls.CreatedAt, query,
		ls.ID, ls.SectionType, ls.Title, ls.Subtitle, ls.Description,
		ls.ImageURL, ls.LinkURL, ls.Icon, ls.OrderIndex)
}

// UpdateLandingSection updates an existing landing section
func (s *Store) UpdateLandingSection(ctx context.Context, ls *models.LandingSection) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE landing_sections
		SET section_type = $1, title = $2, subtitle = $3, description = $4,
		    image_url = $5, link_url = $6, icon = $7, order_index = $8
		WHERE id = $9`,
		ls.SectionType, ls.Title, ls.Subtitle, ls.Description,
		ls.ImageURL, ls.LinkURL, ls.Icon, ls.OrderIndex, ls.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "landing section", ls.ID)
}

// DeleteLandingSection deletes a landing section
func (s *Store) DeleteLandingSection(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM landing_sections WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "landing section", id)
}

// GetPaymentSettings retrieves the merchant payment configuration. Returns an
// empty settings row when none has been saved yet.
func (s *Store) GetPaymentSettings(ctx context.Context) (*models.PaymentSettings, error) {
	var settings models.PaymentSettings
	err := s.db.GetContext(ctx, &settings,
		"SELECT * FROM payment_settings ORDER BY updated_at DESC LIMIT 1")
	if err == sql.ErrNoRows {
		return &models.PaymentSettings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertPaymentSettings saves the merchant payment configuration
func (s *Store) UpsertPaymentSettings(ctx context.Context, settings *models.PaymentSettings) error {
	query := `
		INSERT INTO payment_settings (id, qris_image_url, client_key, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET qris_image_url = $1, client_key = $2, updated_at = NOW()
		RETURNING id, updated_at`

	return s.db.GetContext(ctx, settings, query, settings.QrisImageURL, settings.ClientKey)
}

// ClearQrisImage removes the stored QRIS image
func (s *Store) ClearQrisImage(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE payment_settings SET qris_image_url = '', updated_at = NOW() WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to clear qris image: %w", err)
	}
	return nil
}
