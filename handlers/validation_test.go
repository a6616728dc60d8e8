package handlers

import (
	"testing"

	"blogapi/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateStruct_PostRequest(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	badID := "xyz"
	goodID := primitive.NewObjectID().Hex()

	tests := []struct {
		name   string
		req    postRequest
		fields []common.FieldError
	}{
		{
			name: "valid",
			req:  postRequest{Title: "Hi", Content: "body", Category: &goodID},
		},
		{
			name: "blank category",
			req:  postRequest{Title: "Hi", Content: "body", Category: new(string)},
		},
		{
			name:   "missing content",
			req:    postRequest{Title: "Hi"},
			fields: []common.FieldError{{Field: "content", Message: "Content is required"}},
		},
		{
			name:   "title too long",
			req:    postRequest{Title: string(long), Content: "body"},
			fields: []common.FieldError{{Field: "title", Message: "Title cannot exceed 100 characters"}},
		},
		{
			name:   "bad category",
			req:    postRequest{Title: "Hi", Content: "body", Category: &badID},
			fields: []common.FieldError{{Field: "category", Message: "Invalid category ID"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStruct(tt.req)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields)
		})
	}
}

func TestPostRequestNormalize(t *testing.T) {
	category := "  "
	req := postRequest{Title: "  Hi ", Content: "\n body \n", Category: &category}
	req.normalize()

	assert.Equal(t, "Hi", req.Title)
	assert.Equal(t, "body", req.Content)
	assert.Equal(t, "", *req.Category)
	assert.NoError(t, validateStruct(req), "blank category clears rather than fails")
}

func TestRegisterRequestNormalize(t *testing.T) {
	req := registerRequest{Name: " Ann ", Email: " ANN@Example.COM ", Password: "secret1"}
	req.normalize()

	assert.Equal(t, "Ann", req.Name)
	assert.Equal(t, "ann@example.com", req.Email)
	assert.NoError(t, validateStruct(req))
}
