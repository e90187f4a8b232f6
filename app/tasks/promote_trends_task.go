package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/signal-comb/app/trends"
)

type PromoteTrendsTask struct {
	Task
	promoter *trends.Promoter
}

func NewPromoteTrendsTask(promoter *trends.Promoter) *PromoteTrendsTask {
	return &PromoteTrendsTask{
		Task:     NewTask(TaskTypePromoteTrends),
		promoter: promoter,
	}
}

func (t *PromoteTrendsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.promoter.Run(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to run trend promotion: %w", err)
	}

	slog.Info("Trend promotion completed",
		"observed", result.Observed,
		"promoted", len(result.Promoted),
		"fallback", result.FellBack,
		"duration", t.GetDuration().Round(time.Millisecond).String())

	return nil
}
