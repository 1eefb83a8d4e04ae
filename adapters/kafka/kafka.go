package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

// Writer is a minimal Kafka-like writer interface.
// Users can adapt segmentio/kafka-go or any other client to this.
type Writer interface {
	Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// Adapter implements service.EventPublisher using an injected Writer.
type Adapter struct {
	Writer Writer
}

var _ service.EventPublisher = (*Adapter)(nil)

// New creates a new Kafka adapter instance with the provided writer.
func New(w Writer) *Adapter { return &Adapter{Writer: w} }

// Publish writes e as JSON to its topic, keyed by opts.Key so that events of one
// record stay on one partition.
func (a *Adapter) Publish(ctx context.Context, e service.Event, opts service.PublishOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Writer == nil {
		return fmt.Errorf("kafka publish: %w", serr.ErrPublishFailed)
	}

	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka publish serialize: %w", errors.Join(serr.ErrSerializationFailed, err))
	}

	topic := topicForEvent(e, opts)

	var key []byte
	if opts.Key != "" {
		key = []byte(opts.Key)
	}

	if err = a.Writer.Write(ctx, topic, key, val, publishHeaders(e, opts)); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// separate return from preceding multi-line block (wsl)
		return fmt.Errorf("kafka publish write: %w", errors.Join(serr.ErrPublishFailed, err))
	}

	return nil
}

// helpers

func topicForEvent(e service.Event, o service.PublishOptions) string {
	if o.TopicOverride != "" {
		return o.TopicOverride
	}

	return e.Topic()
}

func publishHeaders(e service.Event, o service.PublishOptions) map[string]string {
	h := make(map[string]string, len(o.Headers)+2)
	for k, v := range o.Headers {
		h[k] = v
	}

	h["service"] = e.Service
	h["event"] = string(e.Name)

	return h
}
