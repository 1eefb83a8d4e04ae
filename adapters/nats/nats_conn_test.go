package nats_test

import (
	"errors"
	"testing"

	"github.com/next-trace/scg-service-state/adapters/nats"
	serr "github.com/next-trace/scg-service-state/contract/errors"
)

func TestNewWithNATS_EmptyURL(t *testing.T) {
	_, _, err := nats.NewWithNATS(nats.Config{})
	if err == nil {
		t.Fatalf("expected error")
	}

	if !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want ErrPublishFailed, got %v", err)
	}
}
