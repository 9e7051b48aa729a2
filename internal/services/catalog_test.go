package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storely/shoprec/pkg/models"
)

var productCreateFixture = models.ProductCreateRequest{
	Name:        "Wireless Headphones",
	Description: "Over-ear, noise cancelling",
	Category:    "Electronics",
	Price:       89.99,
	Stock:       25,
	Rating:      4.7,
}

var productTestColumns = []string{
	"id", "name", "description", "category", "price", "brand",
	"attributes", "image_url", "stock", "rating", "created_at",
}

func newCatalogTestService(t *testing.T) (*CatalogService, pgxmock.PgxPoolIface) {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewCatalogService(mockDB, logger), mockDB
}

func TestCatalogService_Get(t *testing.T) {
	svc, mockDB := newCatalogTestService(t)

	t.Run("found", func(t *testing.T) {
		productID := uuid.New()
		brand := "Acme"
		attributes := map[string]interface{}{"color": "red"}

		rows := pgxmock.NewRows(productTestColumns).AddRow(
			productID, "Novel", "A good read", "Books", 19.99, &brand,
			attributes, (*string)(nil), 10, 4.2, time.Now().UTC(),
		)
		mockDB.ExpectQuery("SELECT (.+) FROM products WHERE id").
			WithArgs(productID).
			WillReturnRows(rows)

		product, err := svc.Get(context.Background(), productID)
		require.NoError(t, err)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, "Novel", product.Name)
		assert.Equal(t, "Books", product.Category)
		require.NotNil(t, product.Brand)
		assert.Equal(t, brand, *product.Brand)
		assert.Equal(t, "red", product.Attributes["color"])

		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		productID := uuid.New()
		mockDB.ExpectQuery("SELECT (.+) FROM products WHERE id").
			WithArgs(productID).
			WillReturnError(pgx.ErrNoRows)

		_, err := svc.Get(context.Background(), productID)
		assert.ErrorIs(t, err, ErrProductNotFound)

		require.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestCatalogService_Create(t *testing.T) {
	svc, mockDB := newCatalogTestService(t)

	mockDB.ExpectExec("INSERT INTO products").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	req := &productCreateFixture
	product, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, "Wireless Headphones", product.Name)
	assert.Equal(t, "Electronics", product.Category)
	assert.NotNil(t, product.Attributes)

	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCatalogService_Create_NormalizesText(t *testing.T) {
	svc, mockDB := newCatalogTestService(t)

	mockDB.ExpectExec("INSERT INTO products").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	req := productCreateFixture
	req.Name = "  Wireless   Headphones  "
	req.Category = " Electronics "

	product, err := svc.Create(context.Background(), &req)
	require.NoError(t, err)
	assert.Equal(t, "Wireless Headphones", product.Name)
	assert.Equal(t, "Electronics", product.Category)

	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCatalogService_Categories(t *testing.T) {
	svc, mockDB := newCatalogTestService(t)

	rows := pgxmock.NewRows([]string{"category"}).
		AddRow("Books").
		AddRow("Electronics")
	mockDB.ExpectQuery("SELECT DISTINCT category FROM products").
		WillReturnRows(rows)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Electronics"}, categories)

	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCatalogService_List_FiltersByCategory(t *testing.T) {
	svc, mockDB := newCatalogTestService(t)

	productID := uuid.New()
	rows := pgxmock.NewRows(productTestColumns).AddRow(
		productID, "Novel", "A good read", "Books", 19.99, (*string)(nil),
		map[string]interface{}{}, (*string)(nil), 5, 4.0, time.Now().UTC(),
	)
	mockDB.ExpectQuery("SELECT (.+) FROM products WHERE category").
		WithArgs("Books", 10, 0).
		WillReturnRows(rows)

	products, err := svc.List(context.Background(), "Books", 10, 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, productID, products[0].ID)

	require.NoError(t, mockDB.ExpectationsWereMet())
}
