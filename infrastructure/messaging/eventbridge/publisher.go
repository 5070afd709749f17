package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"graphqueryreader/application/ports"
)

const sourceName = "graphqueryreader"

// Publisher implements ports.EventBus over AWS EventBridge, emitting one
// "query executed" audit event per completed request.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher builds an EventBridge-backed ports.EventBus.
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventBus {
	return &Publisher{client: client, eventBusName: eventBusName, logger: logger}
}

// Publish sends one audit event to EventBridge, retrying transient
// failures with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, event ports.AuditEvent) error {
	return p.publishWithRetry(ctx, event)
}

func (p *Publisher) publishWithRetry(ctx context.Context, event ports.AuditEvent) error {
	const maxRetries = 3
	backoff := 100 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := p.publishOnce(ctx, event)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < maxRetries-1 {
			p.logger.Warn("retrying audit event publication",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed to publish audit event after %d attempts: %w", maxRetries, lastErr)
}

func (p *Publisher) publishOnce(ctx context.Context, event ports.AuditEvent) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	entry := types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBusName),
		Source:       aws.String(sourceName),
		DetailType:   aws.String("QueryExecuted"),
		Detail:       aws.String(string(detail)),
		Time:         aws.Time(time.Now()),
		Resources:    []string{fmt.Sprintf("graphqueryreader:request:%s", event.RequestID)},
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for _, e := range result.Entries {
			if e.ErrorCode != nil {
				p.logger.Error("failed to publish audit event",
					zap.String("errorCode", *e.ErrorCode),
					zap.String("errorMessage", aws.ToString(e.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("audit event published", zap.String("requestID", event.RequestID), zap.String("eventBus", p.eventBusName))
	return nil
}
