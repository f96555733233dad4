package repository

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
)

// CategoryRepository handles inventory category persistence
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns every category ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	query := `SELECT id, name, description, created_at FROM inventory_categories ORDER BY name`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

// Create inserts a category
func (r *CategoryRepository) Create(ctx context.Context, in *domain.CategoryInput) (*domain.Category, error) {
	var c domain.Category
	query := `
		INSERT INTO inventory_categories (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at`
	if err := r.db.GetContext(ctx, &c, query, in.Name, in.Description); err != nil {
		return nil, database.MapError(err, "inventory_category")
	}
	return &c, nil
}
