package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/cardsync-service/internal/models/m_about_me"
	"github.com/light-bringer/cardsync-service/internal/models/m_education"
	"github.com/light-bringer/cardsync-service/internal/models/m_portfolio_project"
	"github.com/light-bringer/cardsync-service/internal/models/m_work_experience"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

func main() {
	database := flag.String("database", getEnvOrDefault("CARDSYNC_SPANNER_DATABASE", "projects/test-project/instances/test-instance/databases/cardsync-db"), "Spanner database to seed")
	logMode := flag.String("log-mode", "dev", "Log mode (dev or prod)")
	flag.Parse()

	log, err := logger.New(*logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	client, err := spanner.NewClient(ctx, *database)
	if err != nil {
		log.Fatal("failed to create spanner client", "error", err)
	}
	defer client.Close()

	muts := demoMutations(time.Now())
	if _, err := client.Apply(ctx, muts); err != nil {
		log.Fatal("failed to seed cards", "error", err)
	}
	log.Info("demo cards seeded", "database", *database, "rows", len(muts))

	fmt.Println("Now try the API:")
	fmt.Println(`  curl -X POST localhost:8080/api/v1/changes -d '{"cardType":"work_experience","entityId":1,"fields":{"position":"Staff Engineer"}}'`)
	fmt.Println("  curl -X POST localhost:8080/api/v1/commit")
	fmt.Println("  curl localhost:8080/api/v1/commit/progress")
	fmt.Println("  curl 'localhost:8080/api/v1/events?limit=10'")
}

// demoMutations upserts a small profile so commits have rows to update.
// Re-running the tool resets the rows to these values.
func demoMutations(now time.Time) []*spanner.Mutation {
	return []*spanner.Mutation{
		m_about_me.NewModel().InsertMut(&m_about_me.Data{
			ID:        1,
			FullName:  "Ada Lovelace",
			Headline:  "Analyst",
			Bio:       "Writes programs for engines that do not exist yet.",
			Email:     "ada@example.com",
			Location:  "London",
			CreatedAt: now,
			UpdatedAt: now,
		}),
		m_work_experience.NewModel().InsertMut(&m_work_experience.Data{
			ID:           1,
			CompanyName:  "Analytical Engines Ltd",
			Position:     "Engineer",
			Year:         "1842",
			Location:     "London",
			Technologies: "punch cards",
			SortOrder:    1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}),
		m_work_experience.NewModel().InsertMut(&m_work_experience.Data{
			ID:          2,
			CompanyName: "Difference Works",
			Position:    "Consultant",
			Year:        "1840",
			SortOrder:   2,
			CreatedAt:   now,
			UpdatedAt:   now,
		}),
		m_education.NewModel().InsertMut(&m_education.Data{
			ID:           1,
			Institution:  "Private tutoring",
			Degree:       "Mathematics",
			FieldOfStudy: "Calculus",
			Year:         "1833",
			SortOrder:    1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}),
		m_portfolio_project.NewModel().InsertMut(&m_portfolio_project.Data{
			ID:          1,
			Title:       "Note G",
			Description: "Bernoulli numbers on the analytical engine",
			URL:         "https://example.com/note-g",
			SortOrder:   1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
