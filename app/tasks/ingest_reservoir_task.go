package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/signal-comb/app/extract"
	"github.com/lysyi3m/signal-comb/app/reservoir"
)

type IngestReservoirTask struct {
	Task
	builder       *reservoir.Builder
	noveltyStore  *extract.Store
	emojiDenylist []string
	limit         int
	topN          int
}

func NewIngestReservoirTask(builder *reservoir.Builder, noveltyStore *extract.Store, emojiDenylist []string, limit int, topN int) *IngestReservoirTask {
	return &IngestReservoirTask{
		Task:          NewTask(TaskTypeIngestReservoir),
		builder:       builder,
		noveltyStore:  noveltyStore,
		emojiDenylist: emojiDenylist,
		limit:         limit,
		topN:          topN,
	}
}

func (t *IngestReservoirTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	rows, err := t.builder.Build(ctx, t.limit)
	if err != nil {
		return fmt.Errorf("failed to build reservoir: %w", err)
	}

	now := time.Now().UTC()
	topEmojis := extract.TopEmojis(rows, t.noveltyStore, t.emojiDenylist, t.topN, now)
	acronyms := extract.AcronymCandidates(rows, t.topN)

	slog.Info("Reservoir ingestion completed",
		"rows", len(rows),
		"top_emojis", len(topEmojis),
		"acronym_candidates", len(acronyms),
		"duration", t.GetDuration().Round(time.Millisecond).String())

	return nil
}
