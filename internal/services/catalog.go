package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/pkg/models"
)

// DatabaseQuerier abstracts the pgx pool surface the stores use so tests can
// substitute a mock connection.
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// CatalogService owns product reads and writes.
type CatalogService struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewCatalogService(db DatabaseQuerier, logger *logrus.Logger) *CatalogService {
	return &CatalogService{db: db, logger: logger}
}

const productColumns = `id, name, description, category, price, brand, attributes, image_url, stock, rating, created_at`

func (s *CatalogService) Create(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, error) {
	product := &models.Product{
		ID:          uuid.New(),
		Name:        NormalizeText(req.Name),
		Description: NormalizeText(req.Description),
		Category:    NormalizeText(req.Category),
		Price:       req.Price,
		Attributes:  req.Attributes,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		Rating:      req.Rating,
		CreatedAt:   time.Now().UTC(),
	}
	if req.Brand != nil {
		brand := NormalizeText(*req.Brand)
		product.Brand = &brand
	}
	if product.Attributes == nil {
		product.Attributes = map[string]interface{}{}
	}

	query := `
		INSERT INTO products (id, name, description, category, price, brand, attributes, image_url, stock, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Category, product.Price,
		product.Brand, product.Attributes, product.ImageURL, product.Stock, product.Rating,
		product.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"category":   product.Category,
	}).Info("Product created")

	return product, nil
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	var p models.Product
	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Brand,
		&p.Attributes, &p.ImageURL, &p.Stock, &p.Rating, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

// List supports optional category filtering with limit/offset pagination.
func (s *CatalogService) List(ctx context.Context, category string, limit, offset int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		rows pgx.Rows
		err  error
	)
	if category != "" {
		query := fmt.Sprintf(
			`SELECT %s FROM products WHERE category = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			productColumns,
		)
		rows, err = s.db.Query(ctx, query, NormalizeText(category), limit, offset)
	} else {
		query := fmt.Sprintf(
			`SELECT %s FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			productColumns,
		)
		rows, err = s.db.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetAll returns the full candidate catalog in one batch for the scoring
// engine.
func (s *CatalogService) GetAll(ctx context.Context) ([]models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products`, productColumns)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func scanProducts(rows pgx.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Brand,
			&p.Attributes, &p.ImageURL, &p.Stock, &p.Rating, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
