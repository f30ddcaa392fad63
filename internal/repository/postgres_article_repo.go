package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/newsdesk/internal/model"
)

const articleColumns = `id, title, slug, description, content, excerpt, featured_image,
	status, published_at, author_id, tags, read_time, is_premium, view_count,
	created_at, updated_at`

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
// newslettersとblog_postsは同一のカラム構成を持つため、
// テーブル名をパラメータ化して実装を共有する。
type PostgresArticleRepo struct {
	db    *sql.DB
	table string
}

// NewPostgresNewsletterRepo はnewslettersテーブルを対象とする記事リポジトリを生成する。
func NewPostgresNewsletterRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db, table: "newsletters"}
}

// NewPostgresBlogPostRepo はblog_postsテーブルを対象とする記事リポジトリを生成する。
func NewPostgresBlogPostRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db, table: "blog_posts"}
}

func (r *PostgresArticleRepo) scanArticle(row *sql.Row) (*model.Article, error) {
	article := &model.Article{}
	var publishedAt sql.NullTime
	err := row.Scan(
		&article.ID, &article.Title, &article.Slug, &article.Description,
		&article.Content, &article.Excerpt, &article.FeaturedImage,
		&article.Status, &publishedAt, &article.AuthorID,
		pq.Array(&article.Tags), &article.ReadTime, &article.IsPremium,
		&article.ViewCount, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		article.PublishedAt = &publishedAt.Time
	}
	return article, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, articleColumns, r.table),
		id,
	)
	article, err := r.scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	return article, nil
}

// FindBySlug は指定スラッグの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, articleColumns, r.table),
		slug,
	)
	article, err := r.scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by slug: %w", err)
	}
	return article, nil
}

// List は記事一覧をpublished_at降順（下書きはcreated_at降順）で返す。
func (r *PostgresArticleRepo) List(ctx context.Context, opts ArticleListOptions) ([]*model.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, articleColumns, r.table)
	args := []any{}
	if opts.PublishedOnly {
		query += ` WHERE status = 'published'`
	}
	query += ` ORDER BY published_at DESC NULLS LAST, created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		article := &model.Article{}
		var publishedAt sql.NullTime
		err := rows.Scan(
			&article.ID, &article.Title, &article.Slug, &article.Description,
			&article.Content, &article.Excerpt, &article.FeaturedImage,
			&article.Status, &publishedAt, &article.AuthorID,
			pq.Array(&article.Tags), &article.ReadTime, &article.IsPremium,
			&article.ViewCount, &article.CreatedAt, &article.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		if publishedAt.Valid {
			article.PublishedAt = &publishedAt.Time
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

// Create は記事を作成し、採番されたIDとタイムスタンプをarticleに書き戻す。
func (r *PostgresArticleRepo) Create(ctx context.Context, article *model.Article) error {
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s
			(title, slug, description, content, excerpt, featured_image,
			 status, published_at, author_id, tags, read_time, is_premium)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, view_count, created_at, updated_at`, r.table),
		article.Title, article.Slug, article.Description, article.Content,
		article.Excerpt, article.FeaturedImage, article.Status,
		article.PublishedAt, article.AuthorID, pq.Array(article.Tags),
		article.ReadTime, article.IsPremium,
	).Scan(&article.ID, &article.ViewCount, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// Update は記事を上書き更新する。対象が存在しない場合はエラーを返す。
func (r *PostgresArticleRepo) Update(ctx context.Context, article *model.Article) error {
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE %s
		 SET title = $2, slug = $3, description = $4, content = $5,
		     excerpt = $6, featured_image = $7, status = $8, published_at = $9,
		     tags = $10, read_time = $11, is_premium = $12, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`, r.table),
		article.ID, article.Title, article.Slug, article.Description,
		article.Content, article.Excerpt, article.FeaturedImage,
		article.Status, article.PublishedAt, pq.Array(article.Tags),
		article.ReadTime, article.IsPremium,
	).Scan(&article.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("article %d not found", article.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	return nil
}

// Delete は指定IDの記事を削除する。対象が存在しない場合はエラーを返す。
func (r *PostgresArticleRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("article %d not found", id)
	}
	return nil
}

// IncrementViewCount は閲覧数を1加算する。
// 加算はDB側で行うため、並行アクセスでも更新が失われない。
func (r *PostgresArticleRepo) IncrementViewCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET view_count = view_count + 1 WHERE id = $1`, r.table),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
