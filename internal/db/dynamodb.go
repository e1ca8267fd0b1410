package db

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/emotiflow/internal/models"
)

const (
	ANALYSIS_TTL          = 30 * 24 * time.Hour
	DEFAULT_HISTORY_LIMIT = 20
	MAX_HISTORY_LIMIT     = 100
)

// DynamoDBAPI is the slice of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// AnalysisStore keeps a history of emotion analyses in DynamoDB.
type AnalysisStore struct {
	client DynamoDBAPI
	table  string
	now    func() time.Time
}

func NewAnalysisStore(client DynamoDBAPI, table string) *AnalysisStore {
	return &AnalysisStore{client: client, table: table, now: time.Now}
}

func (s *AnalysisStore) PutAnalysis(ctx context.Context, analysis models.Analysis) error {
	item, err := AnalysisToDynamoDBItem(analysis, s.now().Add(ANALYSIS_TTL))
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to store analysis: %w", err)
	}

	slog.Debug("[DynamoDB] Stored analysis",
		slog.String("id", analysis.ID),
		slog.String("dominant_emotion", analysis.Dominant))
	return nil
}

// RecentAnalyses returns up to limit analyses, newest first.
func (s *AnalysisStore) RecentAnalyses(ctx context.Context, limit int) ([]models.Analysis, error) {
	if limit <= 0 {
		limit = DEFAULT_HISTORY_LIMIT
	}
	if limit > MAX_HISTORY_LIMIT {
		limit = MAX_HISTORY_LIMIT
	}

	var analyses []models.Analysis
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for analyses failed: %w", err)
		}

		var page []models.Analysis
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal analysis page", slog.String("error", err.Error()))
			return nil, err
		}
		analyses = append(analyses, page...)
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})
	if len(analyses) > limit {
		analyses = analyses[:limit]
	}

	slog.Info("[DynamoDB] Successfully retrieved analyses", slog.Int("count", len(analyses)))
	return analyses, nil
}

func AnalysisToDynamoDBItem(analysis models.Analysis, expiresAt time.Time) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(analysis)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to marshal analysis: %w", err)
	}
	item["expires_at"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())}
	return item, nil
}
