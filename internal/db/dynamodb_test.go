package db

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/emotiflow/internal/models"
)

type fakeDynamoDB struct {
	items  []map[string]types.AttributeValue
	putErr error
}

func (f *fakeDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items = append(f.items, params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{Items: f.items}, nil
}

var baseTime = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

func analysisAt(id string, offset time.Duration, scores models.EmotionScores) models.Analysis {
	return models.NewAnalysis(id, "text "+id, models.NewEmotionResult(scores), baseTime.Add(offset))
}

func TestAnalysisToDynamoDBItem(t *testing.T) {
	a := analysisAt("a1", 0, models.EmotionScores{Joy: 0.9})
	expires := baseTime.Add(ANALYSIS_TTL)

	item, err := AnalysisToDynamoDBItem(a, expires)
	require.NoError(t, err)

	assert.Equal(t, &types.AttributeValueMemberS{Value: "a1"}, item["id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "joy"}, item["dominant_emotion"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: strconv.FormatInt(expires.Unix(), 10)}, item["expires_at"])
	assert.NotContains(t, item, "Cached")
}

func TestPutAndRecentAnalyses(t *testing.T) {
	fake := &fakeDynamoDB{}
	store := NewAnalysisStore(fake, "EmotionAnalyses")
	store.now = func() time.Time { return baseTime }
	ctx := context.Background()

	require.NoError(t, store.PutAnalysis(ctx, analysisAt("old", 0, models.EmotionScores{Anger: 0.8})))
	require.NoError(t, store.PutAnalysis(ctx, analysisAt("new", 2*time.Minute, models.EmotionScores{Fear: 0.8})))
	require.NoError(t, store.PutAnalysis(ctx, analysisAt("mid", time.Minute, models.EmotionScores{Sadness: 0.8})))

	got, err := store.RecentAnalyses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "fear", got[0].Dominant)
	assert.Equal(t, "mid", got[1].ID)
	assert.True(t, got[0].CreatedAt.Equal(baseTime.Add(2*time.Minute)))
}

func TestRecentAnalysesDefaultLimit(t *testing.T) {
	fake := &fakeDynamoDB{}
	store := NewAnalysisStore(fake, "EmotionAnalyses")
	for i := 0; i < DEFAULT_HISTORY_LIMIT+5; i++ {
		require.NoError(t, store.PutAnalysis(context.Background(),
			analysisAt(strconv.Itoa(i), time.Duration(i)*time.Second, models.EmotionScores{Joy: 0.5})))
	}

	got, err := store.RecentAnalyses(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, DEFAULT_HISTORY_LIMIT)
}

func TestPutAnalysisError(t *testing.T) {
	store := NewAnalysisStore(&fakeDynamoDB{putErr: errors.New("throttled")}, "EmotionAnalyses")

	err := store.PutAnalysis(context.Background(), analysisAt("x", 0, models.EmotionScores{}))
	assert.ErrorContains(t, err, "throttled")
}
