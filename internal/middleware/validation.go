package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storely/shoprec/internal/validation"
)

// ValidationMiddleware checks request bodies against JSON schemas before the
// handler binds them. The body is restored after reading so binding still
// works downstream.
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: validator}
}

func (vm *ValidationMiddleware) ValidateProduct() gin.HandlerFunc {
	return vm.validateRequestBody(vm.validator.ValidateProduct)
}

func (vm *ValidationMiddleware) ValidateUser() gin.HandlerFunc {
	return vm.validateRequestBody(vm.validator.ValidateUser)
}

func (vm *ValidationMiddleware) ValidateInteraction() gin.HandlerFunc {
	return vm.validateRequestBody(vm.validator.ValidateInteraction)
}

func (vm *ValidationMiddleware) validateRequestBody(validate func(interface{}) *validation.Result) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "BODY_READ_ERROR",
					"message": "Failed to read request body",
				},
			})
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		result := validate(bodyBytes)
		if !result.Valid {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "VALIDATION_FAILED",
					"message": "Request body failed schema validation",
					"details": result.Errors,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
