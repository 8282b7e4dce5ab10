package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/crowdfund-api/internal/validation"
	"github.com/crowdfund-api/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// bindJSON decodes and validates the request body into obj. An empty body is
// treated as an empty object.
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}

	if fields, ok := validation.FieldErrors(err); ok {
		return apperror.ValidationFields(fields)
	}
	return apperror.Validation("Malformed request body")
}

// fail hands err to ErrorHandler and stops the chain
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// parseID reads a positive numeric path parameter. Anything else matches no
// resource.
func parseID(c *gin.Context, resource string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NotFound(resource)
	}
	return uint(id), nil
}
