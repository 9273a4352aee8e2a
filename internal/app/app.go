// Package app opens the backends shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/hongminglow/erp-api/internal/config"
	"github.com/hongminglow/erp-api/internal/events"
	"github.com/hongminglow/erp-api/internal/events/kafka"
	"github.com/hongminglow/erp-api/internal/storage"
	"github.com/hongminglow/erp-api/internal/storage/dynamo"
	"github.com/hongminglow/erp-api/internal/storage/memory"
	"github.com/hongminglow/erp-api/internal/storage/postgres"
	"github.com/hongminglow/erp-api/internal/storage/replicated"
)

// Stores holds both backends and the replicated view over them.
type Stores struct {
	Postgres   *postgres.Store
	Document   storage.Store
	Replicated *replicated.Store

	// dynamoClient is nil when the document store is in memory.
	dynamoClient *dynamodb.Client
	tables       dynamo.Tables
}

// OpenStores connects to Postgres and the configured document store. The
// Postgres pool connects lazily, so an unreachable database is not an error here.
func OpenStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	pg, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	s := &Stores{Postgres: pg, tables: dynamo.TablesWithPrefix(cfg.DynamoPrefix)}
	switch cfg.DocumentStore {
	case config.DocumentStoreMemory:
		s.Document = memory.New()
	default:
		client, err := newDynamoClient(ctx, cfg)
		if err != nil {
			pg.Close()
			return nil, err
		}
		s.dynamoClient = client
		s.Document = dynamo.New(client, s.tables)
	}

	policy := replicated.Policy{Timeout: cfg.BackendTimeout, FallbackOnEmpty: cfg.FallbackOnEmpty}
	s.Replicated = replicated.New(s.Postgres, s.Document, policy, slog.Default())
	return s, nil
}

func newDynamoClient(ctx context.Context, cfg config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	}), nil
}

// Prepare creates the relational schema and the DynamoDB tables.
func (s *Stores) Prepare(ctx context.Context) error {
	if err := s.Postgres.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	if s.dynamoClient != nil {
		if err := dynamo.CreateTables(ctx, s.dynamoClient, s.tables); err != nil {
			return fmt.Errorf("create dynamodb tables: %w", err)
		}
	}
	return nil
}

// Close releases the Postgres pool.
func (s *Stores) Close() {
	s.Postgres.Close()
}

// NewPublisher returns a Kafka publisher when brokers are configured, otherwise a no-op.
func NewPublisher(cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Nop{}
	}
	log.Printf("publishing domain events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
