package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/newsdesk/internal/model"
)

const presentationColumns = `id, title, slug, description, content, thumbnail_url,
	status, published_at, author_id, tags, duration, is_premium, view_count,
	created_at, updated_at`

// PostgresPresentationRepo はPostgreSQLを使用したプレゼン資料リポジトリ。
type PostgresPresentationRepo struct {
	db *sql.DB
}

// NewPostgresPresentationRepo はPostgresPresentationRepoを生成する。
func NewPostgresPresentationRepo(db *sql.DB) *PostgresPresentationRepo {
	return &PostgresPresentationRepo{db: db}
}

func scanPresentation(scan func(...any) error) (*model.Presentation, error) {
	p := &model.Presentation{}
	var publishedAt sql.NullTime
	err := scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Content, &p.ThumbnailURL,
		&p.Status, &publishedAt, &p.AuthorID, pq.Array(&p.Tags),
		&p.Duration, &p.IsPremium, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		p.PublishedAt = &publishedAt.Time
	}
	return p, nil
}

// List はプレゼン資料一覧をpublished_at降順で返す。
func (r *PostgresPresentationRepo) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*model.Presentation, error) {
	query := fmt.Sprintf(`SELECT %s FROM presentations`, presentationColumns)
	if publishedOnly {
		query += ` WHERE status = 'published'`
	}
	query += ` ORDER BY published_at DESC NULLS LAST, created_at DESC`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list presentations: %w", err)
	}
	defer rows.Close()

	var presentations []*model.Presentation
	for rows.Next() {
		p, err := scanPresentation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan presentation: %w", err)
		}
		presentations = append(presentations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate presentations: %w", err)
	}

	return presentations, nil
}

// FindBySlug は指定スラッグのプレゼン資料を取得する。見つからない場合はnilを返す。
func (r *PostgresPresentationRepo) FindBySlug(ctx context.Context, slug string) (*model.Presentation, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM presentations WHERE slug = $1`, presentationColumns),
		slug,
	)
	p, err := scanPresentation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find presentation: %w", err)
	}
	return p, nil
}

// Create はプレゼン資料を作成し、採番されたIDをp.IDに書き戻す。
func (r *PostgresPresentationRepo) Create(ctx context.Context, p *model.Presentation) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO presentations
			(title, slug, description, content, thumbnail_url, status,
			 published_at, author_id, tags, duration, is_premium)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, view_count, created_at, updated_at`,
		p.Title, p.Slug, p.Description, p.Content, p.ThumbnailURL, p.Status,
		p.PublishedAt, p.AuthorID, pq.Array(p.Tags), p.Duration, p.IsPremium,
	).Scan(&p.ID, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create presentation: %w", err)
	}
	return nil
}

// Delete は指定IDのプレゼン資料を削除する。
func (r *PostgresPresentationRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM presentations WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete presentation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("presentation %d not found", id)
	}
	return nil
}

// compile-time interface check
var _ PresentationRepository = (*PostgresPresentationRepo)(nil)
