package service

import (
	"context"
	"strings"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
)

type CategoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) List(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	return s.categories.List(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Category, error) {
	return s.categories.GetByID(ctx, userID, id)
}

func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, p *model.CategoryPayload) (*model.Category, error) {
	category := &model.Category{UserID: userID, Name: strings.TrimSpace(p.Name)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, userID uuid.UUID, p *model.CategoryPayload) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(p.Name)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.categories.Delete(ctx, userID, id)
}
