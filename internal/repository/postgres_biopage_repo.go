package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

const bioPageColumns = `id, title, slug, content, profile_image, social_links,
	is_active, view_count, created_at, updated_at`

// PostgresBioPageRepo はPostgreSQLを使用した紹介ページリポジトリ。
type PostgresBioPageRepo struct {
	db *sql.DB
}

// NewPostgresBioPageRepo はPostgresBioPageRepoを生成する。
func NewPostgresBioPageRepo(db *sql.DB) *PostgresBioPageRepo {
	return &PostgresBioPageRepo{db: db}
}

func scanBioPage(scan func(...any) error) (*model.BioPage, error) {
	p := &model.BioPage{}
	var socialLinks []byte
	err := scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.ProfileImage, &socialLinks,
		&p.IsActive, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(socialLinks) > 0 {
		if err := json.Unmarshal(socialLinks, &p.SocialLinks); err != nil {
			return nil, fmt.Errorf("failed to decode social links: %w", err)
		}
	}
	return p, nil
}

// List はis_activeな紹介ページ一覧を返す。
func (r *PostgresBioPageRepo) List(ctx context.Context) ([]*model.BioPage, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM bio_pages WHERE is_active ORDER BY created_at DESC`, bioPageColumns),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bio pages: %w", err)
	}
	defer rows.Close()

	var pages []*model.BioPage
	for rows.Next() {
		p, err := scanBioPage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bio page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bio pages: %w", err)
	}

	return pages, nil
}

// FindBySlug は指定スラッグの紹介ページを取得する。見つからない場合はnilを返す。
func (r *PostgresBioPageRepo) FindBySlug(ctx context.Context, slug string) (*model.BioPage, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM bio_pages WHERE slug = $1`, bioPageColumns),
		slug,
	)
	p, err := scanBioPage(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find bio page: %w", err)
	}
	return p, nil
}

// Create は紹介ページを作成し、採番されたIDをp.IDに書き戻す。
func (r *PostgresBioPageRepo) Create(ctx context.Context, p *model.BioPage) error {
	socialLinks := p.SocialLinks
	if socialLinks == nil {
		socialLinks = map[string]string{}
	}
	encoded, err := json.Marshal(socialLinks)
	if err != nil {
		return fmt.Errorf("failed to encode social links: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO bio_pages (title, slug, content, profile_image, social_links, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, view_count, created_at, updated_at`,
		p.Title, p.Slug, p.Content, p.ProfileImage, encoded, p.IsActive,
	).Scan(&p.ID, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bio page: %w", err)
	}
	return nil
}

// Delete は指定IDの紹介ページを削除する。
func (r *PostgresBioPageRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bio_pages WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete bio page: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bio page %d not found", id)
	}
	return nil
}

// compile-time interface check
var _ BioPageRepository = (*PostgresBioPageRepo)(nil)
