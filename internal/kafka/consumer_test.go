package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *scriptedReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type countingHandler struct {
	mu     sync.Mutex
	calls  map[int64]int
	failOn map[int64]int
}

func (c *countingHandler) handle(_ context.Context, m kafka.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[m.Offset]++
	if c.calls[m.Offset] <= c.failOn[m.Offset] {
		return errors.New("db down")
	}
	return nil
}

func (c *countingHandler) count(offset int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[offset]
}

func runConsumer(t *testing.T, c *Consumer, h Handler) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()
	return func() {
		stop()
		require.NoError(t, <-done)
	}
}

func TestConsumerRetriesFailedMessageBeforeCommittingLater(t *testing.T) {
	r := &scriptedReader{queue: []kafka.Message{{Partition: 0, Offset: 10}, {Partition: 0, Offset: 11}}}
	c := newConsumer(r, 2, zerolog.Nop())
	c.backoff = time.Millisecond
	h := &countingHandler{calls: map[int64]int{}, failOn: map[int64]int{10: 2}}

	stop := runConsumer(t, c, h.handle)
	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, time.Second, 5*time.Millisecond)
	stop()

	assert.Equal(t, []int64{10, 11}, r.committed)
	assert.Equal(t, 3, h.count(10))
	assert.Equal(t, 1, h.count(11))
	assert.True(t, r.closed)
}

func TestConsumerLeavesMessageUncommittedOnShutdown(t *testing.T) {
	r := &scriptedReader{queue: []kafka.Message{{Partition: 1, Offset: 5}, {Partition: 1, Offset: 6}}}
	c := newConsumer(r, 1, zerolog.Nop())
	c.backoff = time.Millisecond
	h := &countingHandler{calls: map[int64]int{}, failOn: map[int64]int{5: 1 << 30}}

	stop := runConsumer(t, c, h.handle)
	require.Eventually(t, func() bool { return h.count(5) > 1 }, time.Second, time.Millisecond)
	stop()

	assert.Empty(t, r.committed)
	assert.Zero(t, h.count(6))
}

func TestConsumerSpreadsPartitions(t *testing.T) {
	r := &scriptedReader{queue: []kafka.Message{{Partition: 0, Offset: 1}, {Partition: 1, Offset: 2}, {Partition: 2, Offset: 3}}}
	c := newConsumer(r, 2, zerolog.Nop())
	h := &countingHandler{calls: map[int64]int{}, failOn: map[int64]int{}}

	stop := runConsumer(t, c, h.handle)
	require.Eventually(t, func() bool { return len(r.commits()) == 3 }, time.Second, 5*time.Millisecond)
	stop()

	assert.ElementsMatch(t, []int64{1, 2, 3}, r.committed)
}
