package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogapi/common"
	"blogapi/models"
	"blogapi/repository"

	"github.com/gosimple/slug"
)

type CategoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

type CategoryInput struct {
	Name        string
	Slug        string
	Color       string
	Description string
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	category := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Color:       strings.TrimSpace(in.Color),
		Description: strings.TrimSpace(in.Description),
	}

	category.Slug = slug.Make(strings.TrimSpace(in.Slug))
	if category.Slug == "" {
		category.Slug = slug.Make(category.Name)
	}
	if category.Slug == "" {
		return nil, common.NewValidationError(common.FieldError{Field: "slug", Message: "Category slug could not be derived from name"})
	}
	if category.Color == "" {
		category.Color = models.DefaultCategoryColor
	}

	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewError(common.ErrConflict, "Category already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}
