package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dialview/icws-monitor/internal/types"
	"github.com/rs/zerolog"
)

// DynamoDBStore implements Store using AWS DynamoDB
type DynamoDBStore struct {
	client *dynamodb.Client
	config DynamoConfig
	logger zerolog.Logger
}

// NewDynamoDBStore creates a new DynamoDB store
func NewDynamoDBStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoDBStore{
		client: client,
		config: cfg,
		logger: logger,
	}

	// Create tables in local mode
	if cfg.Mode == DynamoModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Msg("DynamoDB store initialized")

	return store, nil
}

func (s *DynamoDBStore) UpsertInteraction(i types.Interaction) error {
	item, err := attributevalue.MarshalMap(interactionRecord(i))
	if err != nil {
		return fmt.Errorf("failed to marshal interaction: %w", err)
	}

	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.config.InteractionsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) UpsertAgent(a types.Agent) error {
	item, err := attributevalue.MarshalMap(agentRecord(a))
	if err != nil {
		return fmt.Errorf("failed to marshal agent: %w", err)
	}

	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.config.AgentsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save agent: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) UpsertLedgerEntry(e types.PushLedgerEntry) error {
	item, err := attributevalue.MarshalMap(ledgerRecord(e))
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.config.PushLedgerTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save ledger entry: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) DeleteInteractionsBefore(cutoff time.Time) (int, error) {
	return s.deleteBefore(s.config.InteractionsTable, "InteractionID", "UpdatedAt", cutoff, true)
}

func (s *DynamoDBStore) DeleteAgentsBefore(cutoff time.Time) (int, error) {
	return s.deleteBefore(s.config.AgentsTable, "AgentID", "UpdatedAt", cutoff, true)
}

func (s *DynamoDBStore) DeleteLedgerBefore(cutoff time.Time) (int, error) {
	// Ledger entries have no currency notion, age alone decides
	return s.deleteBefore(s.config.PushLedgerTable, "InteractionID", "DateAdded", cutoff, false)
}

// retentionFilter matches items whose timestamp attribute sorts before the
// cutoff. Timestamps are RFC 3339 strings so lexicographic comparison matches
// chronological order. With notCurrentOnly the filter also requires IsCurrent
// to be false: a record the switch still reports must survive the sweep no
// matter how stale its last update is.
func retentionFilter(pk, tsAttr string, cutoff time.Time, notCurrentOnly bool) (expression.Expression, error) {
	filter := expression.Name(tsAttr).LessThan(expression.Value(cutoff.UTC().Format(time.RFC3339)))
	if notCurrentOnly {
		filter = filter.And(expression.Name("IsCurrent").Equal(expression.Value(false)))
	}
	return expression.NewBuilder().
		WithFilter(filter).
		WithProjection(expression.NamesList(expression.Name(pk))).
		Build()
}

// deleteBefore scans for expired items and batch-deletes them.
func (s *DynamoDBStore) deleteBefore(tableName, pk, tsAttr string, cutoff time.Time, notCurrentOnly bool) (int, error) {
	expr, err := retentionFilter(pk, tsAttr, cutoff, notCurrentOnly)
	if err != nil {
		return 0, fmt.Errorf("failed to build expression: %w", err)
	}

	deleted := 0
	var lastKey map[string]dbtypes.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:                 aws.String(tableName),
			FilterExpression:          expr.Filter(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Limit:                     aws.Int32(500),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Scan(context.Background(), input)
		if err != nil {
			return deleted, fmt.Errorf("failed to scan %s: %w", tableName, err)
		}

		// Batch delete in groups of 25
		for i := 0; i < len(result.Items); i += 25 {
			end := i + 25
			if end > len(result.Items) {
				end = len(result.Items)
			}

			requests := make([]dbtypes.WriteRequest, 0, end-i)
			for _, item := range result.Items[i:end] {
				requests = append(requests, dbtypes.WriteRequest{
					DeleteRequest: &dbtypes.DeleteRequest{
						Key: map[string]dbtypes.AttributeValue{
							pk: item[pk],
						},
					},
				})
			}

			_, err := s.client.BatchWriteItem(context.Background(), &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]dbtypes.WriteRequest{
					tableName: requests,
				},
			})
			if err != nil {
				return deleted, fmt.Errorf("failed to batch delete from %s: %w", tableName, err)
			}
			deleted += len(requests)
		}

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	if deleted > 0 {
		s.logger.Info().Str("table", tableName).Int("deleted", deleted).Msg("expired records deleted")
	}
	return deleted, nil
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, logger zerolog.Logger) (Store, error) {
	cfg := LoadDynamoConfig()

	switch cfg.Mode {
	case DynamoModeLocal, DynamoModeAWS:
		return NewDynamoDBStore(ctx, cfg, logger)
	default:
		logger.Info().Msg("DynamoDB disabled (DYNAMO_MODE=none)")
		return NewNoopStore(), nil
	}
}
