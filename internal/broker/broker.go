package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/wb-go/wbf/retry"
)

var ErrClosed = errors.New("broker closed")

type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
}

type Producer interface {
	Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error
	Close() error
}

// Consumer delivers messages to out until ctx is done. Start returns at once.
type Consumer interface {
	Start(ctx context.Context, out chan<- *Message, strategy retry.Strategy)
	Commit(ctx context.Context, msg *Message) error
	Close() error
}

// SubmissionPublisher encodes accepted form submissions onto a Producer, keyed
// by session so one session's submissions stay ordered.
type SubmissionPublisher struct {
	producer Producer
	retries  retry.Strategy
}

func NewSubmissionPublisher(producer Producer, retries retry.Strategy) *SubmissionPublisher {
	return &SubmissionPublisher{
		producer: producer,
		retries:  retries,
	}
}

func (p *SubmissionPublisher) Publish(ctx context.Context, sub *domain.Submission) error {
	value, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}
	if err := p.producer.Send(ctx, p.retries, []byte(sub.Session), value); err != nil {
		return fmt.Errorf("failed to send submission: %w", err)
	}
	return nil
}

// DecodeSubmission is the consumer side of SubmissionPublisher.
func DecodeSubmission(msg *Message) (*domain.Submission, error) {
	var sub domain.Submission
	if err := json.Unmarshal(msg.Value, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission: %w", err)
	}
	if sub.Session == "" || sub.Form == "" {
		return nil, errors.New("submission without session or form")
	}
	return &sub, nil
}
