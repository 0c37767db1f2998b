package lock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/ports"
)

// ErrLockTimeout is returned when the equipment stays locked for longer than
// the configured wait.
var ErrLockTimeout = errors.New("timed out waiting for equipment lock")

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig configures the distributed locker
type RedisConfig struct {
	URL     string
	TTL     time.Duration
	MaxWait time.Duration
	Prefix  string
}

// Redis serializes booking per equipment across processes.
type Redis struct {
	client  *redis.Client
	ttl     time.Duration
	maxWait time.Duration
	prefix  string
	log     logger.Logger
}

var _ ports.EquipmentLocker = (*Redis)(nil)

// NewRedis parses the URL and checks the connection.
func NewRedis(config RedisConfig, log logger.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisWithClient(client, config, log), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, config RedisConfig, log logger.Logger) *Redis {
	if config.TTL <= 0 {
		config.TTL = 10 * time.Second
	}
	if config.MaxWait <= 0 {
		config.MaxWait = config.TTL
	}
	if config.Prefix == "" {
		config.Prefix = "labtrack:lock:equipment:"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Redis{client: client, ttl: config.TTL, maxWait: config.MaxWait, prefix: config.Prefix, log: log}
}

// Lock polls SET NX with exponential backoff until acquired, ctx is done or
// MaxWait elapses.
func (l *Redis) Lock(ctx context.Context, equipmentID int64) (func(), error) {
	key := l.prefix + strconv.FormatInt(equipmentID, 10)
	token := uuid.NewString()

	backoff := retry.WithMaxDuration(l.maxWait, retry.WithCappedDuration(250*time.Millisecond, retry.NewExponential(10*time.Millisecond)))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire equipment lock: %w", err)
		}
		if !ok {
			return retry.RetryableError(ErrLockTimeout)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return func() {
		// release must run even when the caller's ctx is already cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.log.Warn(ctx, "failed to release equipment lock", map[string]interface{}{
				"equipment_id": equipmentID,
				"error":        err.Error(),
			})
		}
	}, nil
}

// Close closes the underlying client
func (l *Redis) Close() error {
	return l.client.Close()
}
