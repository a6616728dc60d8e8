package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("load post: %w", ErrNotFound), http.StatusNotFound},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrUnauthorized, http.StatusUnauthorized},
		{NewError(ErrForbidden, "Not authorized to update this post"), http.StatusForbidden},
		{NewValidationError(FieldError{Field: "title", Message: "Title is required"}), http.StatusBadRequest},
		{ErrDuplicateUser, http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatusFromError(tc.err), "%v", tc.err)
	}
}

func TestValidationError_IsErrValidation(t *testing.T) {
	err := fmt.Errorf("create post: %w", NewValidationError(FieldError{Field: "content", Message: "Content is required"}))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "create post: validation failed: content: Content is required", err.Error())
}

func TestRespondError_Shapes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, "Test", NewError(ErrNotFound, "Post not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Post not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondError(c, "Test", errors.New("socket closed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server Error"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondMessage(c, "Test", NewValidationError(FieldError{Field: "email", Message: "Please provide a valid email"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Validation failed","errors":[{"field":"email","message":"Please provide a valid email"}]}`, w.Body.String())
}
