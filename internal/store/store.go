package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves products, optionally filtered by category
func (s *Store) GetProducts(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	if category != "" {
		err := s.db.SelectContext(ctx, &products,
			"SELECT * FROM products WHERE category = $1 ORDER BY created_at DESC", category)
		return products, err
	}
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY created_at DESC")
	return products, err
}

// CreateProduct inserts a new product
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (id, name, description, category, level, rating, customers, price, image_url, stock, is_digital, qris_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	return s.db.GetContext(ctx, p, query,
		p.ID, p.Name, p.Description, p.Category, p.Level, p.Rating, p.Customers,
		p.Price, p.ImageURL, p.Stock, p.IsDigital, p.QrisImageURL)
}

// UpdateProduct updates an existing product
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, category = $3, level = $4, rating = $5,
		    customers = $6, price = $7, image_url = $8, stock = $9, is_digital = $10,
		    qris_image_url = $11, updated_at = NOW()
		WHERE id = $12`,
		p.Name, p.Description, p.Category, p.Level, p.Rating, p.Customers,
		p.Price, p.ImageURL, p.Stock, p.IsDigital, p.QrisImageURL, p.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "product", p.ID)
}

// DeleteProduct deletes a product
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "product", id)
}

// GetCourseByID retrieves a course by ID
func (s *Store) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := s.db.GetContext(ctx, &course, "SELECT * FROM courses WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetCourses retrieves courses, optionally filtered by category
func (s *Store) GetCourses(ctx context.Context, category string) ([]models.Course, error) {
	var courses []models.Course
	if category != "" {
		err := s.db.SelectContext(ctx, &courses,
			"SELECT * FROM courses WHERE category = $1 ORDER BY created_at DESC", category)
		return courses, err
	}
	err := s.db.SelectContext(ctx, &courses, "SELECT * FROM courses ORDER BY created_at DESC")
	return courses, err
}

// CreateCourse inserts a new course
func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	query := `
		INSERT INTO courses (id, name, description, category, level, rating, students, price, image_url, modules, lessons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return s.db.GetContext(ctx, c, query,
		c.ID, c.Name, c.Description, c.Category, c.Level, c.Rating, c.Students,
		c.Price, c.ImageURL, c.Modules, c.Lessons)
}

// UpdateCourse updates an existing course
func (s *Store) UpdateCourse(ctx context.Context, c *models.Course) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE courses
		SET name = $1, description = $2, category = $3, level = $4, rating = $5,
		    students = $6, price = $7, image_url = $8, modules = $9, lessons = $10,
		    updated_at = NOW()
		WHERE id = $11`,
		c.Name, c.Description, c.Category, c.Level, c.Rating, c.Students,
		c.Price, c.ImageURL, c.Modules, c.Lessons, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "course", c.ID)
}

// DeleteCourse deletes a course
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, "course", id)
}

// IncrementProductCustomers bumps the social-proof counter after a paid
// checkout.
func (s *Store) IncrementProductCustomers(ctx context.Context, productID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE products SET customers = customers + 1, updated_at = NOW() WHERE id = $1",
		productID)
	return err
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
