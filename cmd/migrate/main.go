package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

type migrator struct {
	projectID  string
	instanceID string
	databaseID string
	migrateDir string
	log        *logger.Logger
}

func main() {
	m := &migrator{}
	flag.StringVar(&m.projectID, "project", getEnvOrDefault("SPANNER_PROJECT_ID", "test-project"), "GCP project ID")
	flag.StringVar(&m.instanceID, "instance", getEnvOrDefault("SPANNER_INSTANCE_ID", "test-instance"), "Spanner instance ID")
	flag.StringVar(&m.databaseID, "database", getEnvOrDefault("SPANNER_DATABASE_ID", "cardsync-db"), "Spanner database ID")
	flag.StringVar(&m.migrateDir, "migrations", "migrations", "Directory containing migration SQL files")
	logMode := flag.String("log-mode", getEnvOrDefault("CARDSYNC_LOGGING_MODE", "dev"), "Log mode (dev or prod)")
	flag.Parse()

	log, err := logger.New(*logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	m.log = log

	if emulatorHost := os.Getenv("SPANNER_EMULATOR_HOST"); emulatorHost != "" {
		log.Info("using Spanner emulator", "host", emulatorHost)
	}

	if err := m.run(context.Background()); err != nil {
		log.Fatal("migration failed", "error", err)
	}

	log.Info("migrations completed successfully")
}

func (m *migrator) run(ctx context.Context) error {
	if err := m.ensureInstance(ctx); err != nil {
		return fmt.Errorf("failed to ensure instance: %w", err)
	}

	if err := m.ensureDatabase(ctx); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}

	if err := m.applyMigrations(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func (m *migrator) databasePath() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s", m.projectID, m.instanceID, m.databaseID)
}

func (m *migrator) ensureInstance(ctx context.Context) error {
	m.log.Info("ensuring instance exists", "instance", m.instanceID)

	instanceAdmin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	instanceName := fmt.Sprintf("projects/%s/instances/%s", m.projectID, m.instanceID)

	_, err = instanceAdmin.GetInstance(ctx, &instancepb.GetInstanceRequest{
		Name: instanceName,
	})
	if err == nil {
		m.log.Info("instance already exists")
		return nil
	}

	if status.Code(err) != codes.NotFound {
		m.log.Warn("unexpected error checking instance", "error", err)
		return nil
	}

	m.log.Info("creating instance")
	op, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     fmt.Sprintf("projects/%s", m.projectID),
		InstanceId: m.instanceID,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", m.projectID),
			DisplayName: "Cardsync Instance",
			NodeCount:   1,
		},
	})
	if err != nil {
		if status.Code(err) != codes.AlreadyExists {
			return fmt.Errorf("failed to create instance: %w", err)
		}
		m.log.Info("instance already exists")
		return nil
	}

	// the emulator may complete the operation immediately
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		m.log.Warn("instance creation did not finish cleanly", "error", err)
	}

	m.log.Info("instance created")
	return nil
}

func (m *migrator) ensureDatabase(ctx context.Context) error {
	m.log.Info("ensuring database exists", "database", m.databaseID)

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	_, err = adminClient.GetDatabase(ctx, &databasepb.GetDatabaseRequest{
		Name: m.databasePath(),
	})
	if err == nil {
		m.log.Info("database already exists")
		return nil
	}

	if status.Code(err) == codes.NotFound {
		m.log.Info("creating database")
		op, err := adminClient.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
			Parent:          fmt.Sprintf("projects/%s/instances/%s", m.projectID, m.instanceID),
			CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", m.databaseID),
		})
		if err != nil {
			if status.Code(err) != codes.AlreadyExists {
				return fmt.Errorf("failed to create database: %w", err)
			}
			m.log.Info("database already exists")
			return nil
		}

		if _, err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for database creation: %w", err)
		}

		m.log.Info("database created")
		return nil
	}

	if os.Getenv("SPANNER_EMULATOR_HOST") != "" {
		m.log.Warn("proceeding with database in emulator mode", "error", err)
		return nil
	}

	return fmt.Errorf("failed to check database: %w", err)
}

func (m *migrator) applyMigrations(ctx context.Context) error {
	m.log.Info("applying migrations", "dir", m.migrateDir)

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	files, err := migrationFiles(m.migrateDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		m.log.Warn("no migration files found")
		return nil
	}

	for _, file := range files {
		migrationName := filepath.Base(file)
		m.log.Info("applying migration", "file", migrationName)

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		op, err := adminClient.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   m.databasePath(),
			Statements: splitDDLStatements(string(content)),
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", migrationName, err)
		}

		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", migrationName, err)
		}

		m.log.Info("applied migration", "file", migrationName)
	}

	return nil
}

// migrationFiles lists the .sql files of dir in lexical order.
func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migration files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// splitDDLStatements drops comment and blank lines and splits on semicolons.
func splitDDLStatements(content string) []string {
	lines := strings.Split(content, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	content = strings.Join(cleaned, "\n")

	statements := strings.Split(content, ";")
	var result []string
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
