package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/emotiflow/config"
	"github.com/spacesedan/emotiflow/internal/models"
)

const VALKEY_RESULT_KEY_PREFIX = "emotion:result:"

// ValkeyClient caches classifier results keyed by the analysed text.
type ValkeyClient struct {
	Client valkey.Client
	opts   valkey.ClientOption
	ttl    time.Duration
	mu     sync.Mutex
}

func NewValkeyClient(cfg config.Config) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.ValkeyAddress,
		},
		Password:         cfg.ValkeyPassword,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if cfg.ValkeyTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := connectValkey(opts)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", cfg.ValkeyAddress),
		slog.Duration("ttl", cfg.CacheTTL))

	return &ValkeyClient{Client: client, opts: opts, ttl: cfg.CacheTTL}, nil
}

func connectValkey(opts valkey.ClientOption) (valkey.Client, error) {
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")

	client, err := connectValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}

	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) Close() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.Client.Close()
}

// GetResult returns the cached result for text. The bool is false on a miss.
func (vc *ValkeyClient) GetResult(ctx context.Context, text string) (models.EmotionResult, bool, error) {
	var result models.EmotionResult

	res := vc.DoWithRetry(ctx, vc.Client.B().Get().Key(ResultKey(text)).Build(), 3)
	if err := res.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return result, false, nil
		}
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return result, false, err
	}

	raw, err := res.AsBytes()
	if err != nil {
		return result, false, err
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, false, fmt.Errorf("[ValkeyClient] corrupt cached result: %w", err)
	}

	slog.Debug("[ValkeyClient] Cache hit",
		slog.String("dominant_emotion", result.DominantEmotion))
	return result, true, nil
}

func (vc *ValkeyClient) StoreResult(ctx context.Context, text string, result models.EmotionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	cmd := vc.Client.B().Set().Key(ResultKey(text)).Value(valkey.BinaryString(data)).ExSeconds(ttlSeconds(vc.ttl)).Build()
	if err := vc.DoWithRetry(ctx, cmd, 3).Error(); err != nil {
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return err
	}
	return nil
}

// ttlSeconds rounds up so a sub-second ttl never becomes EX 0.
func ttlSeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	return max(secs, 1)
}

// ResultKey hashes text so arbitrary input makes a bounded key.
func ResultKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return VALKEY_RESULT_KEY_PREFIX + hex.EncodeToString(sum[:])
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		vc.mu.Lock()
		client := vc.Client
		vc.mu.Unlock()

		result = client.Do(ctx, completed)
		if err := result.Error(); err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
