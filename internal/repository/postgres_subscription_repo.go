package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresNewsletterSubscriptionRepo はPostgreSQLを使用したニュースレター購読リポジトリ。
type PostgresNewsletterSubscriptionRepo struct {
	db *sql.DB
}

// NewPostgresNewsletterSubscriptionRepo はPostgresNewsletterSubscriptionRepoを生成する。
func NewPostgresNewsletterSubscriptionRepo(db *sql.DB) *PostgresNewsletterSubscriptionRepo {
	return &PostgresNewsletterSubscriptionRepo{db: db}
}

// Subscribe は購読を作成する。解除済みレコードがある場合は再有効化する。
// 既に有効な購読がある場合もそのまま成功を返す（冪等）。
func (r *PostgresNewsletterSubscriptionRepo) Subscribe(ctx context.Context, userID string, newsletterID int64) (*model.NewsletterSubscription, error) {
	sub := &model.NewsletterSubscription{
		UserID:       userID,
		NewsletterID: newsletterID,
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO newsletter_subscriptions (user_id, newsletter_id, is_active)
		 VALUES ($1, $2, TRUE)
		 ON CONFLICT (user_id, newsletter_id)
		 DO UPDATE SET is_active = TRUE, subscribed_at = now()
		 RETURNING id, subscribed_at, is_active`,
		userID, newsletterID,
	).Scan(&sub.ID, &sub.SubscribedAt, &sub.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return sub, nil
}

// Unsubscribe はis_activeをfalseにする。レコードは物理削除しない。
func (r *PostgresNewsletterSubscriptionRepo) Unsubscribe(ctx context.Context, userID string, newsletterID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE newsletter_subscriptions SET is_active = FALSE
		 WHERE user_id = $1 AND newsletter_id = $2`,
		userID, newsletterID,
	)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの有効な購読一覧を返す。
func (r *PostgresNewsletterSubscriptionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.NewsletterSubscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, newsletter_id, subscribed_at, is_active
		 FROM newsletter_subscriptions
		 WHERE user_id = $1 AND is_active
		 ORDER BY subscribed_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*model.NewsletterSubscription
	for rows.Next() {
		sub := &model.NewsletterSubscription{}
		err := rows.Scan(&sub.ID, &sub.UserID, &sub.NewsletterID, &sub.SubscribedAt, &sub.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return subs, nil
}

var _ NewsletterSubscriptionRepository = (*PostgresNewsletterSubscriptionRepo)(nil)

// PostgresReadingHistoryRepo はPostgreSQLを使用した閲覧履歴リポジトリ。
type PostgresReadingHistoryRepo struct {
	db *sql.DB
}

// NewPostgresReadingHistoryRepo はPostgresReadingHistoryRepoを生成する。
func NewPostgresReadingHistoryRepo(db *sql.DB) *PostgresReadingHistoryRepo {
	return &PostgresReadingHistoryRepo{db: db}
}

// Add は閲覧履歴を追記する。
func (r *PostgresReadingHistoryRepo) Add(ctx context.Context, h *model.ReadingHistory) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reading_history (user_id, content_type, content_id, read_seconds)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, read_at`,
		h.UserID, h.ContentType, h.ContentID, h.ReadSeconds,
	).Scan(&h.ID, &h.ReadAt)
	if err != nil {
		return fmt.Errorf("failed to add reading history: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの閲覧履歴をread_at降順で返す。
func (r *PostgresReadingHistoryRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]*model.ReadingHistory, error) {
	query := `SELECT id, user_id, content_type, content_id, read_at, read_seconds
		FROM reading_history
		WHERE user_id = $1
		ORDER BY read_at DESC`
	args := []any{userID}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $2`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reading history: %w", err)
	}
	defer rows.Close()

	var history []*model.ReadingHistory
	for rows.Next() {
		h := &model.ReadingHistory{}
		err := rows.Scan(&h.ID, &h.UserID, &h.ContentType, &h.ContentID, &h.ReadAt, &h.ReadSeconds)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading history: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reading history: %w", err)
	}

	return history, nil
}

// CountInPeriod は期間内の指定コンテンツ種別の閲覧数を返す。
func (r *PostgresReadingHistoryRepo) CountInPeriod(ctx context.Context, userID string, contentType model.ContentType, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reading_history
		 WHERE user_id = $1 AND content_type = $2 AND read_at >= $3 AND read_at < $4`,
		userID, contentType, from, to,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reading history: %w", err)
	}
	return count, nil
}

// StatsByContent はコンテンツ単位の閲覧統計を返す。
func (r *PostgresReadingHistoryRepo) StatsByContent(ctx context.Context, contentType model.ContentType, contentID int64) (*ContentStats, error) {
	stats := &ContentStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(read_seconds), 0)
		 FROM reading_history
		 WHERE content_type = $1 AND content_id = $2`,
		contentType, contentID,
	).Scan(&stats.TotalReads, &stats.AvgReadSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to get content stats: %w", err)
	}
	return stats, nil
}

// DeleteOlderThan は指定時刻より古い閲覧履歴を削除し、削除件数を返す。
// 保持期間を過ぎた履歴の定期削除に使用する。
func (r *PostgresReadingHistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reading_history WHERE read_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old reading history: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected, nil
}

var _ ReadingHistoryRepository = (*PostgresReadingHistoryRepo)(nil)
