package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/newsdesk/internal/model"
)

const productColumns = `id, name, slug, description, long_description, category,
	price, currency, image_url, demo_url, github_url, website_url,
	features, tags, is_active, is_featured, view_count, created_at, updated_at`

// PostgresAIProductRepo はPostgreSQLを使用したAIプロダクトリポジトリ。
type PostgresAIProductRepo struct {
	db *sql.DB
}

// NewPostgresAIProductRepo はPostgresAIProductRepoを生成する。
func NewPostgresAIProductRepo(db *sql.DB) *PostgresAIProductRepo {
	return &PostgresAIProductRepo{db: db}
}

func scanProduct(scan func(...any) error) (*model.AIProduct, error) {
	product := &model.AIProduct{}
	var price sql.NullString
	err := scan(
		&product.ID, &product.Name, &product.Slug, &product.Description,
		&product.LongDescription, &product.Category, &price, &product.Currency,
		&product.ImageURL, &product.DemoURL, &product.GithubURL, &product.WebsiteURL,
		pq.Array(&product.Features), pq.Array(&product.Tags),
		&product.IsActive, &product.IsFeatured, &product.ViewCount,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.Price = price.String
	return product, nil
}

// FindByID は指定IDのプロダクトを取得する。見つからない場合はnilを返す。
func (r *PostgresAIProductRepo) FindByID(ctx context.Context, id int64) (*model.AIProduct, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM ai_products WHERE id = $1`, productColumns),
		id,
	)
	product, err := scanProduct(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// FindBySlug は指定スラッグのプロダクトを取得する。見つからない場合はnilを返す。
func (r *PostgresAIProductRepo) FindBySlug(ctx context.Context, slug string) (*model.AIProduct, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM ai_products WHERE slug = $1`, productColumns),
		slug,
	)
	product, err := scanProduct(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}
	return product, nil
}

func (r *PostgresAIProductRepo) queryProducts(ctx context.Context, query string, args ...any) ([]*model.AIProduct, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*model.AIProduct
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// List はis_activeなプロダクト一覧をcreated_at降順で返す。
func (r *PostgresAIProductRepo) List(ctx context.Context, limit, offset int) ([]*model.AIProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM ai_products WHERE is_active ORDER BY created_at DESC`, productColumns)
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}
	return r.queryProducts(ctx, query, args...)
}

// ListFeatured はis_activeかつis_featuredなプロダクト一覧を返す。
func (r *PostgresAIProductRepo) ListFeatured(ctx context.Context) ([]*model.AIProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM ai_products
		WHERE is_active AND is_featured ORDER BY created_at DESC`, productColumns)
	return r.queryProducts(ctx, query)
}

// Create はプロダクトを作成し、採番されたIDをproduct.IDに書き戻す。
func (r *PostgresAIProductRepo) Create(ctx context.Context, product *model.AIProduct) error {
	var price any
	if product.Price != "" {
		price = product.Price
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ai_products
			(name, slug, description, long_description, category, price, currency,
			 image_url, demo_url, github_url, website_url, features, tags,
			 is_active, is_featured)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, view_count, created_at, updated_at`,
		product.Name, product.Slug, product.Description, product.LongDescription,
		product.Category, price, product.Currency, product.ImageURL,
		product.DemoURL, product.GithubURL, product.WebsiteURL,
		pq.Array(product.Features), pq.Array(product.Tags),
		product.IsActive, product.IsFeatured,
	).Scan(&product.ID, &product.ViewCount, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update はプロダクトを上書き更新する。対象が存在しない場合はエラーを返す。
func (r *PostgresAIProductRepo) Update(ctx context.Context, product *model.AIProduct) error {
	var price any
	if product.Price != "" {
		price = product.Price
	}
	err := r.db.QueryRowContext(ctx,
		`UPDATE ai_products
		 SET name = $2, slug = $3, description = $4, long_description = $5,
		     category = $6, price = $7, currency = $8, image_url = $9,
		     demo_url = $10, github_url = $11, website_url = $12,
		     features = $13, tags = $14, is_active = $15, is_featured = $16,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		product.ID, product.Name, product.Slug, product.Description,
		product.LongDescription, product.Category, price, product.Currency,
		product.ImageURL, product.DemoURL, product.GithubURL, product.WebsiteURL,
		pq.Array(product.Features), pq.Array(product.Tags),
		product.IsActive, product.IsFeatured,
	).Scan(&product.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("product %d not found", product.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete は指定IDのプロダクトを削除する。
func (r *PostgresAIProductRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM ai_products WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %d not found", id)
	}
	return nil
}

// IncrementViewCount は閲覧数を1加算する。
func (r *PostgresAIProductRepo) IncrementViewCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ai_products SET view_count = view_count + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AIProductRepository = (*PostgresAIProductRepo)(nil)
