package publisher

import (
	"context"
	"encoding/base64"
	"math/rand/v2"
	"strconv"

	crawlerrors "sjsage522/discountcrawler/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// PayloadField is the stream entry field holding the base64 record JSON
const PayloadField = "b64_discount"

// RedisPublisher implements Publisher on Redis streams
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return NewRedisPublisherWithClient(ctx, client, streamPrefix, streamCount, streamMaxLength)
}

// NewRedisPublisherWithClient wraps an existing client
func NewRedisPublisherWithClient(ctx context.Context, client *redis.Client, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamCount:     max(streamCount, 1),
		streamMaxLength: streamMaxLength,
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping() error {
	if err := p.client.Ping(p.ctx).Err(); err != nil {
		return crawlerrors.NewPublisher("redis", "server unreachable", err)
	}
	return nil
}

// Publish adds the message to one of the streams, chosen at random.
// With streamCount 3 the streams are prefix:0 to prefix:2.
func (p *RedisPublisher) Publish(msg Message) error {
	stream := p.streamName(rand.IntN(p.streamCount))

	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			PayloadField: base64.StdEncoding.EncodeToString(msg.Payload),
			"run_id":     msg.RunID,
			"site":       msg.Site,
		},
	}).Err()
	if err != nil {
		return crawlerrors.NewPublisher(msg.Site, "failed to add to "+stream, err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	if p.streamMaxLength <= 0 {
		return nil
	}

	for i := 0; i < p.streamCount; i++ {
		stream := p.streamName(i)
		if err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return crawlerrors.NewPublisher("redis", "failed to trim "+stream, err)
		}
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func (p *RedisPublisher) streamName(i int) string {
	return p.streamPrefix + ":" + strconv.Itoa(i)
}
