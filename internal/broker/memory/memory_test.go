package memory

import (
	"context"
	"strconv"
	"testing"
	"time"

	"storefront/internal/broker"
	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

func receive(t *testing.T, ch <-chan *broker.Message) *broker.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestSendAndConsume(t *testing.T) {
	b := New("topic", 0, 4)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan *broker.Message, 4)
	b.Start(ctx, out, retry.Strategy{})

	require.NoError(t, b.Send(ctx, retry.Strategy{}, []byte("k"), []byte("v")))

	msg := receive(t, out)
	assert.Equal(t, "topic", msg.Topic)
	assert.Equal(t, int64(0), msg.Offset)
	assert.Equal(t, []byte("k"), msg.Key)
	assert.Equal(t, []byte("v"), msg.Value)

	assert.Equal(t, int64(-1), b.Committed())
	require.NoError(t, b.Commit(ctx, msg))
	assert.Equal(t, int64(0), b.Committed())
}

func TestLatencyDelaysDelivery(t *testing.T) {
	b := New("topic", 50*time.Millisecond, 4)
	defer b.Close()

	ctx := context.Background()
	out := make(chan *broker.Message, 1)
	b.Start(ctx, out, retry.Strategy{})

	start := time.Now()
	require.NoError(t, b.Send(ctx, retry.Strategy{}, nil, []byte("v")))
	receive(t, out)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestSameKeyMessagesKeepSendOrder(t *testing.T) {
	b := New("topic", time.Millisecond, 8)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan *broker.Message, 8)
	b.Start(ctx, out, retry.Strategy{})

	const n = 200
	go func() {
		for i := 0; i < n; i++ {
			if err := b.Send(ctx, retry.Strategy{}, []byte("s1"), []byte(strconv.Itoa(i))); err != nil {
				return
			}
		}
	}()

	for i := 0; i < n; i++ {
		msg := receive(t, out)
		require.Equal(t, int64(i), msg.Offset)
		require.Equal(t, strconv.Itoa(i), string(msg.Value))
	}
}

func TestCommitDoesNotSkipGaps(t *testing.T) {
	b := New("topic", 0, 1)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Commit(ctx, &broker.Message{Offset: 0}))
	require.NoError(t, b.Commit(ctx, &broker.Message{Offset: 2}))
	assert.Equal(t, int64(0), b.Committed())
	assert.False(t, b.IsCommitted(1))
	assert.True(t, b.IsCommitted(2))

	require.NoError(t, b.Commit(ctx, &broker.Message{Offset: 1}))
	assert.Equal(t, int64(2), b.Committed())
	assert.True(t, b.IsCommitted(1))
}

func TestSendAfterClose(t *testing.T) {
	b := New("topic", time.Hour, 1)
	require.NoError(t, b.Send(context.Background(), retry.Strategy{}, nil, []byte("dropped")))
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	err := b.Send(context.Background(), retry.Strategy{}, nil, []byte("v"))
	assert.ErrorIs(t, err, broker.ErrClosed)
}

func TestSubmissionRoundTrip(t *testing.T) {
	b := New("topic", 0, 1)
	defer b.Close()

	ctx := context.Background()
	out := make(chan *broker.Message, 1)
	b.Start(ctx, out, retry.Strategy{})

	pub := broker.NewSubmissionPublisher(b, retry.Strategy{})
	sent := &domain.Submission{ID: "1", Session: "s1", Form: domain.FormContact, Fields: map[string]string{"name": "Ana"}}
	require.NoError(t, pub.Publish(ctx, sent))

	msg := receive(t, out)
	assert.Equal(t, []byte("s1"), msg.Key)

	got, err := broker.DecodeSubmission(msg)
	require.NoError(t, err)
	assert.Equal(t, sent.Fields, got.Fields)
	assert.Equal(t, sent.Form, got.Form)

	_, err = broker.DecodeSubmission(&broker.Message{Value: []byte(`{"id":"x"}`)})
	assert.Error(t, err)
}
