// Package cleanup は閲覧履歴の自動削除ジョブを提供する。
// 保持期間（デフォルト365日）を超過した閲覧履歴を日次バッチで削除する。
// 閲覧履歴は追記専用で増え続けるため、定期的な削除で肥大化を防ぐ。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// HistoryDeleter は閲覧履歴の削除に必要なインターフェース。
// repository.ReadingHistoryRepositoryの部分集合として定義する。
type HistoryDeleter interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob は保持期間を超過した閲覧履歴の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	history       HistoryDeleter
	logger        *slog.Logger
	now           func() time.Time
	RetentionDays int // 閲覧履歴の保持日数（デフォルト: 365）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は365日。
func NewCleanupJob(history HistoryDeleter, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		history:       history,
		logger:        logger,
		now:           time.Now,
		RetentionDays: 365,
	}
}

// Run は保持期間を超過した閲覧履歴を削除する。
// read_atがRetentionDays日前より古いレコードをDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := j.now()
	cutoff := start.AddDate(0, 0, -j.RetentionDays)

	deletedCount, err := j.history.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("閲覧履歴クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("閲覧履歴クリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("閲覧履歴クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start はクリーンアップジョブを日次で実行し続ける。
// 起動直後に1回実行し、以降はintervalごとに実行する。
// コンテキストがキャンセルされるまでブロックする。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("クリーンアップジョブの初回実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("クリーンアップジョブの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
