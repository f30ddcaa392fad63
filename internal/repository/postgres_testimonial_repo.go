package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresTestimonialRepo はPostgreSQLを使用した推薦文リポジトリ。
type PostgresTestimonialRepo struct {
	db *sql.DB
}

// NewPostgresTestimonialRepo はPostgresTestimonialRepoを生成する。
func NewPostgresTestimonialRepo(db *sql.DB) *PostgresTestimonialRepo {
	return &PostgresTestimonialRepo{db: db}
}

// List はis_activeな推薦文の一覧を返す。featuredOnlyがtrueの場合はis_featuredのみ。
func (r *PostgresTestimonialRepo) List(ctx context.Context, featuredOnly bool) ([]*model.Testimonial, error) {
	query := `SELECT id, name, title, company, content, avatar, rating,
			is_active, is_featured, created_at, updated_at
		FROM testimonials
		WHERE is_active`
	if featuredOnly {
		query += ` AND is_featured`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer rows.Close()

	var testimonials []*model.Testimonial
	for rows.Next() {
		t := &model.Testimonial{}
		var rating sql.NullInt64
		err := rows.Scan(
			&t.ID, &t.Name, &t.Title, &t.Company, &t.Content, &t.Avatar,
			&rating, &t.IsActive, &t.IsFeatured, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		t.Rating = int(rating.Int64)
		testimonials = append(testimonials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate testimonials: %w", err)
	}

	return testimonials, nil
}

// Create は推薦文を作成し、採番されたIDをt.IDに書き戻す。
func (r *PostgresTestimonialRepo) Create(ctx context.Context, t *model.Testimonial) error {
	var rating any
	if t.Rating > 0 {
		rating = t.Rating
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO testimonials (name, title, company, content, avatar, rating, is_active, is_featured)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		t.Name, t.Title, t.Company, t.Content, t.Avatar, rating, t.IsActive, t.IsFeatured,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create testimonial: %w", err)
	}
	return nil
}

// Delete は指定IDの推薦文を削除する。
func (r *PostgresTestimonialRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM testimonials WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("testimonial %d not found", id)
	}
	return nil
}

// compile-time interface check
var _ TestimonialRepository = (*PostgresTestimonialRepo)(nil)
