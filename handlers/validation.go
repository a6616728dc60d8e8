package handlers

import (
	"errors"
	"reflect"
	"strings"

	"blogapi/common"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request bodies are bound without gin's binding tags, trimmed, then checked
// against their validate tags so whitespace-only values fail "required".
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		// blank means "no category" and is handled by the service
		id := fl.Field().String()
		return id == "" || primitive.IsValidObjectID(id)
	})
	return v
}

// fieldMessages holds client-facing messages keyed by "field.tag".
var fieldMessages = map[string]string{
	"title.required":    "Title is required",
	"title.max":         "Title cannot exceed 100 characters",
	"content.required":  "Content is required",
	"content.max":       "Comment cannot exceed 1000 characters",
	"category.objectid": "Invalid category ID",
	"excerpt.max":       "Excerpt cannot exceed 200 characters",
	"name.required":     "Name must be at least 2 characters long",
	"name.min":          "Name must be at least 2 characters long",
	"name.max":          "Name cannot exceed 50 characters",
	"email.required":    "Please provide a valid email",
	"email.email":       "Please provide a valid email",
	"password.required": "Password must be at least 6 characters long",
	"password.min":      "Password must be at least 6 characters long",
	"color.hexcolor":    "Color must be a hex value like #3b82f6",
}

func validateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]common.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		fields = append(fields, common.FieldError{Field: fe.Field(), Message: msg})
	}
	return common.NewValidationError(fields...)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
