package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
	"github.com/light-bringer/cardsync-service/internal/pkg/query"
)

// Config for the outbox cleanup job.
type Config struct {
	SpannerDB              string
	CompletedRetentionDays int
	FailedRetentionDays    int
	DryRun                 bool
}

// retentionRule deletes events of one status processed before a cutoff.
type retentionRule struct {
	status string
	cutoff time.Time
}

func (r retentionRule) filter() *query.Builder {
	return query.From(m_outbox.TableName).
		Where(query.Eq(m_outbox.Status, r.status)).
		Where(query.Lt(m_outbox.ProcessedAt, r.cutoff))
}

func main() {
	config := Config{}
	flag.StringVar(&config.SpannerDB, "database", os.Getenv("CARDSYNC_SPANNER_DATABASE"), "Spanner database (format: projects/PROJECT/instances/INSTANCE/databases/DATABASE)")
	flag.IntVar(&config.CompletedRetentionDays, "completed-retention", 30, "Retention days for completed events")
	flag.IntVar(&config.FailedRetentionDays, "failed-retention", 90, "Retention days for failed events")
	flag.BoolVar(&config.DryRun, "dry-run", false, "Show what would be deleted without actually deleting")
	logMode := flag.String("log-mode", "dev", "Log mode (dev or prod)")
	flag.Parse()

	log, err := logger.New(*logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if config.SpannerDB == "" {
		log.Fatal("-database flag or CARDSYNC_SPANNER_DATABASE is required")
	}

	if err := cleanupOutbox(context.Background(), config, log); err != nil {
		log.Fatal("cleanup failed", "error", err)
	}

	log.Info("cleanup completed successfully")
}

func retentionRules(config Config, now time.Time) []retentionRule {
	return []retentionRule{
		{status: m_outbox.StatusCompleted, cutoff: now.AddDate(0, 0, -config.CompletedRetentionDays)},
		{status: m_outbox.StatusFailed, cutoff: now.AddDate(0, 0, -config.FailedRetentionDays)},
	}
}

func cleanupOutbox(ctx context.Context, config Config, log *logger.Logger) error {
	client, err := spanner.NewClient(ctx, config.SpannerDB)
	if err != nil {
		return fmt.Errorf("failed to create Spanner client: %w", err)
	}
	defer client.Close()

	rules := retentionRules(config, time.Now().UTC())
	for _, r := range rules {
		log.Info("retention rule", "status", r.status, "cutoff", r.cutoff.Format(time.RFC3339))
	}

	if config.DryRun {
		return dryRunCleanup(ctx, client, rules, log)
	}
	return performCleanup(ctx, client, rules, log)
}

// querier is satisfied by read-only and read-write transactions.
type querier interface {
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
}

func countEvents(ctx context.Context, txn querier, r retentionRule) (int64, error) {
	iter := txn.Query(ctx, r.filter().Count().Build())
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s events: %w", r.status, err)
	}

	var count int64
	if err := row.Columns(&count); err != nil {
		return 0, fmt.Errorf("failed to parse count: %w", err)
	}
	return count, nil
}

func dryRunCleanup(ctx context.Context, client *spanner.Client, rules []retentionRule, log *logger.Logger) error {
	txn := client.ReadOnlyTransaction()
	defer txn.Close()

	var total int64
	for _, r := range rules {
		count, err := countEvents(ctx, txn, r)
		if err != nil {
			return err
		}
		log.Info("would delete events", "status", r.status, "count", count)
		total += count
	}

	log.Info("dry run finished, run without -dry-run to delete", "total", total)
	return nil
}

func performCleanup(ctx context.Context, client *spanner.Client, rules []retentionRule, log *logger.Logger) error {
	_, err := client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		for _, r := range rules {
			count, err := countEvents(ctx, txn, r)
			if err != nil {
				return err
			}
			if count == 0 {
				log.Info("no old events to delete", "status", r.status)
				continue
			}

			rowCount, err := txn.Update(ctx, r.filter().BuildDelete())
			if err != nil {
				return fmt.Errorf("failed to delete %s events: %w", r.status, err)
			}
			log.Info("deleted events", "status", r.status, "count", rowCount)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cleanup transaction failed: %w", err)
	}

	return nil
}
