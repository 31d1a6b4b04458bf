package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/quartzsec/armora/internal/catalog/domain"
	"github.com/quartzsec/armora/pkg/db/option"
	"github.com/quartzsec/armora/pkg/repository"
	"gorm.io/gorm"
)

// The catalog is lookup-shaped, so it rides the generic store. Workflow
// entities with conditional updates keep hand-built repositories.
type repo struct {
	products repository.Repository[domain.Product]
	plans    repository.Repository[domain.Plan]
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{
		products: repository.ProvideStore[domain.Product](db),
		plans:    repository.ProvideStore[domain.Plan](db),
	}
}

func (r *repo) InsertProduct(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return r.products.WithTrx(db).Create(ctx, product)
}

func (r *repo) InsertPlan(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return r.plans.WithTrx(db).Create(ctx, plan)
}

func (r *repo) FindProductByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	return r.products.WithTrx(db).FindOne(ctx, &domain.Product{ID: id})
}

func (r *repo) FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Plan, error) {
	return r.plans.WithTrx(db).FindOne(ctx, &domain.Plan{ID: id})
}

func (r *repo) ListProducts(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Product, error) {
	query := &domain.Product{}
	if activeOnly {
		query.Active = true
	}

	rows, err := r.products.WithTrx(db).Find(ctx, query, option.WithOrder("created_at asc"))
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, *row)
	}
	return products, nil
}

func (r *repo) ListPlansByProductID(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]domain.Plan, error) {
	rows, err := r.plans.WithTrx(db).Find(ctx, &domain.Plan{ProductID: productID}, option.WithOrder("created_at asc"))
	if err != nil {
		return nil, err
	}

	plans := make([]domain.Plan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, *row)
	}
	return plans, nil
}
