package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// errBadInput marks a request body that could not be decoded at all.
var errBadInput = errors.New("request body could not be read")

const badInputMessage = "The request could not be read. Please try again."

// bind decodes the request into obj and runs its binding tags. Field
// failures come back as validator.ValidationErrors; anything else is
// wrapped with errBadInput.
func bind(c *gin.Context, obj any) (validator.ValidationErrors, error) {
	err := c.ShouldBind(obj)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs, nil
	}
	return nil, fmt.Errorf("%w: %v", errBadInput, err)
}
