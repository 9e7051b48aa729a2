package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_Product(t *testing.T) {
	validator, err := NewSchemaValidator()
	require.NoError(t, err)

	t.Run("valid payload", func(t *testing.T) {
		result := validator.ValidateProduct(`{
			"name": "Wireless Headphones",
			"category": "Electronics",
			"price": 89.99,
			"attributes": {"color": "black", "wireless": true}
		}`)
		assert.True(t, result.Valid, "errors: %v", result.Errors)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		result := validator.ValidateProduct(`{"name": "X", "category": "Y", "price": -1}`)
		assert.False(t, result.Valid)
	})

	t.Run("missing required fields", func(t *testing.T) {
		result := validator.ValidateProduct(`{"name": "X"}`)
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.Errors)
	})
}

func TestSchemaValidator_Interaction(t *testing.T) {
	validator, err := NewSchemaValidator()
	require.NoError(t, err)

	t.Run("valid purchase", func(t *testing.T) {
		result := validator.ValidateInteraction(`{
			"user_id": "7f6c1556-9a53-44a6-9d5f-9a15e1fa7a11",
			"product_id": "a1b2c3d4-0000-1111-2222-333344445555",
			"kind": "purchase"
		}`)
		assert.True(t, result.Valid, "errors: %v", result.Errors)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		result := validator.ValidateInteraction(`{
			"user_id": "7f6c1556-9a53-44a6-9d5f-9a15e1fa7a11",
			"product_id": "a1b2c3d4-0000-1111-2222-333344445555",
			"kind": "wishlist"
		}`)
		assert.False(t, result.Valid)
	})

	t.Run("rating out of range rejected", func(t *testing.T) {
		result := validator.ValidateInteraction(`{
			"user_id": "7f6c1556-9a53-44a6-9d5f-9a15e1fa7a11",
			"product_id": "a1b2c3d4-0000-1111-2222-333344445555",
			"kind": "rating",
			"rating": 9
		}`)
		assert.False(t, result.Valid)
	})

	t.Run("rating below one rejected", func(t *testing.T) {
		result := validator.ValidateInteraction(`{
			"user_id": "7f6c1556-9a53-44a6-9d5f-9a15e1fa7a11",
			"product_id": "a1b2c3d4-0000-1111-2222-333344445555",
			"kind": "rating",
			"rating": 0
		}`)
		assert.False(t, result.Valid)
	})
}

func TestSchemaValidator_User(t *testing.T) {
	validator, err := NewSchemaValidator()
	require.NoError(t, err)

	t.Run("valid payload", func(t *testing.T) {
		result := validator.ValidateUser(`{"name": "Alice", "email": "alice@example.com"}`)
		assert.True(t, result.Valid, "errors: %v", result.Errors)
	})

	t.Run("struct input is marshaled before validation", func(t *testing.T) {
		payload := map[string]interface{}{"name": "Bob", "email": "bob@example.com"}
		result := validator.ValidateUser(payload)
		assert.True(t, result.Valid, "errors: %v", result.Errors)
	})
}
