package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/gin-gonic/gin"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/events"
	"github.com/light-bringer/cardsync-service/internal/app/card/progress"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/get_cards"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/get_changes"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/get_progress"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/list_events"
	"github.com/light-bringer/cardsync-service/internal/app/card/reconciler"
	"github.com/light-bringer/cardsync-service/internal/app/card/registry"
	"github.com/light-bringer/cardsync-service/internal/app/card/remote"
	"github.com/light-bringer/cardsync-service/internal/app/card/repo"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/commit_changes"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/discard_changes"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/register_change"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/relay_outbox"
	"github.com/light-bringer/cardsync-service/internal/config"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/committer"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
	httptransport "github.com/light-bringer/cardsync-service/internal/transport/http"
)

// cardStore joins a writer and a reader into one store.
type cardStore struct {
	contracts.CardWriter
	contracts.CardReader
}

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	Publisher     *progress.RedisPublisher
	CommitChanges *commit_changes.Interactor
	RelayOutbox   *relay_outbox.Interactor
	Router        *gin.Engine

	cfg *config.Config
	log *logger.Logger
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg *config.Config, log *logger.Logger) (*ServiceOptions, error) {
	opts := &ServiceOptions{cfg: cfg, log: log}

	// 1. Create infrastructure components
	clk := clock.NewRealClock()

	// 2. Create the card store
	var (
		store      contracts.CardStore
		listEvents *list_events.Query
		eventsRM   *repo.EventsReadModel
		outboxRepo *repo.OutboxRepo
		comm       *committer.Committer
	)
	switch cfg.Store.Mode {
	case config.StoreRemote:
		store = remote.NewClient(cfg.Store.RemoteURL, cfg.Store.Timeout)
		log.Info("using remote card store", "url", cfg.Store.RemoteURL)

	default:
		spannerClient, err := spanner.NewClient(ctx, cfg.Spanner.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spanner client: %w", err)
		}
		opts.SpannerClient = spannerClient

		comm = committer.NewCommitter(spannerClient)
		outboxRepo = repo.NewOutboxRepo()
		eventsRM = repo.NewEventsReadModel(spannerClient)
		store = cardStore{
			CardWriter: repo.NewCardRepo(comm, outboxRepo, clk),
			CardReader: repo.NewReadModel(spannerClient),
		}
		listEvents = list_events.NewQuery(eventsRM)
		log.Info("using spanner card store", "database", cfg.Spanner.Database)
	}

	// 3. Create the change pipeline
	reg := registry.New()
	tracker := progress.NewTracker(clk)
	rec := reconciler.New(store, clk, log)

	if cfg.Redis.Addr != "" {
		pub, err := progress.NewRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Channel, log)
		if err != nil {
			opts.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		opts.Publisher = pub
		tracker.AddListener(pub.Publish)

		if eventsRM != nil {
			opts.RelayOutbox = relay_outbox.NewInteractor(
				eventsRM,
				events.NewRedisPublisher(pub.Client(), cfg.Redis.EventsPrefix),
				outboxRepo,
				comm,
				clk,
				log,
			)
		}
	}

	policy := commit_changes.Backpressure{
		OpDelay:     cfg.Commit.OpDelay,
		EntityDelay: cfg.Commit.EntityDelay,
		CallTimeout: cfg.Commit.CallTimeout,
	}

	// 4. Create command use cases (write operations)
	opts.CommitChanges = commit_changes.NewInteractor(reg, store, tracker, rec, clk, policy, log)
	registerChangeUseCase := register_change.NewInteractor(reg)
	discardChangesUseCase := discard_changes.NewInteractor(reg)

	// 5. Create query use cases (read operations)
	getChangesQuery := get_changes.NewQuery(reg)
	getProgressQuery := get_progress.NewQuery(tracker)
	getCardsQuery := get_cards.NewQuery(rec)

	// 6. Create HTTP handler
	handler := httptransport.NewHandler(httptransport.Deps{
		RegisterChange: registerChangeUseCase,
		DiscardChanges: discardChangesUseCase,
		CommitChanges:  opts.CommitChanges,
		GetChanges:     getChangesQuery,
		GetProgress:    getProgressQuery,
		GetCards:       getCardsQuery,
		ListEvents:     listEvents,
		Store:          store,
		Tracker:        tracker,
		Log:            log,
	})
	opts.Router = httptransport.NewRouter(handler)

	return opts, nil
}

// StartBackground launches the outbox relay when it is configured. It stops
// when ctx is done.
func (s *ServiceOptions) StartBackground(ctx context.Context) {
	if s.RelayOutbox == nil {
		return
	}
	s.log.Info("outbox relay started", "interval", s.cfg.Outbox.RelayInterval)
	go s.RelayOutbox.Run(ctx, s.cfg.Outbox.RelayInterval, &relay_outbox.Request{BatchSize: s.cfg.Outbox.BatchSize})
}

// Close stops an active commit run and closes all resources.
func (s *ServiceOptions) Close() {
	if s.CommitChanges != nil {
		_ = s.CommitChanges.Cancel()
		s.CommitChanges.Wait()
	}
	if s.Publisher != nil {
		_ = s.Publisher.Close()
	}
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
