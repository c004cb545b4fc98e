// Package cleanup は期限切れセッションの定期無効化ジョブを提供する。
// 期限切れのsession_tokenとsession_expiresをNULLにする。ユーザーレコードは削除しない。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExpiredSessionClearer は期限切れセッションを無効化するインターフェース。
// *repository.PostgresUserRepoが満たす。
type ExpiredSessionClearer interface {
	ClearExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SweepRecorder は無効化件数を記録するインターフェース。
type SweepRecorder interface {
	RecordSessionsSwept(count int64)
}

type nopRecorder struct{}

func (nopRecorder) RecordSessionsSwept(int64) {}

// SessionSweepJob は期限切れセッションの無効化ジョブ。
// 冪等で、対象がない場合もエラーにならない。
type SessionSweepJob struct {
	users    ExpiredSessionClearer
	recorder SweepRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionSweepJob は新しいSessionSweepJobを生成する。recorderがnilの場合は記録しない。
func NewSessionSweepJob(users ExpiredSessionClearer, recorder SweepRecorder, logger *slog.Logger) *SessionSweepJob {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionSweepJob{
		users:    users,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Run は実行時点で期限切れのセッションを無効化する。
func (j *SessionSweepJob) Run(ctx context.Context) error {
	start := time.Now()

	cleared, err := j.users.ClearExpiredSessions(ctx, j.now())
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	j.recorder.RecordSessionsSwept(cleared)

	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("cleared_count", cleared),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start は起動直後に1回実行し、以降interval間隔で実行する。
// ctxがキャンセルされるまでブロックする。
func (j *SessionSweepJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil && ctx.Err() != nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 失敗はRun内でログ出力済み。次の周期で再試行する
			_ = j.Run(ctx)
		}
	}
}
