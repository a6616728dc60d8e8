package common

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const serverErrorMessage = "Server Error"

// RespondData writes the {success, data} envelope used by the post endpoints.
func RespondData(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondError writes {success:false, error} for the post and category endpoints.
func RespondError(c *gin.Context, op string, err error) {
	code := HTTPStatusFromError(err)
	body := gin.H{
		"success": false,
		"error":   publicMessage(code, err),
	}
	if fields := fieldErrors(err); fields != nil {
		body["errors"] = fields
	}
	logIfServerError(c, op, code, err)
	c.JSON(code, body)
}

// RespondMessage writes the flat {message} error shape used by the auth endpoints.
func RespondMessage(c *gin.Context, op string, err error) {
	code := HTTPStatusFromError(err)
	body := gin.H{"message": publicMessage(code, err)}
	if fields := fieldErrors(err); fields != nil {
		body["errors"] = fields
	}
	logIfServerError(c, op, code, err)
	c.JSON(code, body)
}

func publicMessage(code int, err error) string {
	if code == http.StatusInternalServerError {
		return serverErrorMessage
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch {
	case errors.Is(err, ErrValidation):
		return "Validation failed"
	case errors.Is(err, ErrDuplicateUser):
		return "User already exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	}
	return err.Error()
}

func fieldErrors(err error) []FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

func logIfServerError(c *gin.Context, op string, code int, err error) {
	if code < http.StatusInternalServerError {
		return
	}
	log.Printf("[%s] request %s failed: %v", op, c.GetString("requestId"), err)
}
