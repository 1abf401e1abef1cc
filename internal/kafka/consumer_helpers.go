package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/steam_cache/pkg/ctxmeta"
	"github.com/Gunvolt24/steam_cache/pkg/metrics"
	"github.com/Gunvolt24/steam_cache/pkg/validate"
	"github.com/segmentio/kafka-go"
)

// handleMessage — обработка одного сообщения; возвращает, нужно ли коммитить оффсет.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	ctx = ctxmeta.WithRequestID(ctx, fmt.Sprintf("kafka-%s-%d-%d", topic, msg.Partition, msg.Offset))

	steamID, err := validate.SteamIDFromMessage(msg.Value)
	if err != nil {
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "invalid message offset=%d: %v (skipped)", msg.Offset, err)
		return true
	}
	ctx = ctxmeta.WithSteamID(ctx, steamID)

	ctxTimeout, cancel := context.WithTimeout(ctx, c.processTimeout)
	_, err = c.service.CacheUser(ctxTimeout, steamID)
	cancel()

	switch {
	case err == nil:
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	case ctx.Err() != nil:
		// остановка посреди обработки: сообщение перечитается после рестарта
		c.log.Warnf(ctx, "shutdown during offset=%d, leaving uncommitted", msg.Offset)
		return false
	default:
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Errorf(ctx, "cache failed offset=%d steam_id=%s: %v (committed, not retried)", msg.Offset, steamID, err)
		return true
	}
}

// commitSafely — коммит оффсета; ошибка только логируется.
func (c *Consumer) commitSafely(ctx context.Context, msg *kafka.Message) {
	if commitErr := c.reader.CommitMessages(ctx, *msg); commitErr != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, commitErr)
	}
}

// sleepWithBackoff ждет backoff или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// nextBackoff — удвоение с потолком retryMax.
func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.retryMax {
		return c.retryMax
	}
	return current
}

// withJitterEqual — половина задержки фиксирована, вторая половина случайна.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}
