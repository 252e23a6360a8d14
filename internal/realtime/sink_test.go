package realtime

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vedran77/syncspace/internal/domain"
)

type fakeSink struct {
	frames chan []byte
	closed atomic.Bool
}

func newFakeSink(size int) *fakeSink {
	return &fakeSink{frames: make(chan []byte, size)}
}

func (s *fakeSink) Deliver(frame []byte) error {
	if s.closed.Load() {
		return fmt.Errorf("%w: sink closed", domain.ErrDelivery)
	}
	select {
	case s.frames <- frame:
		return nil
	default:
		return fmt.Errorf("%w: buffer full", domain.ErrDelivery)
	}
}

func (s *fakeSink) Close() { s.closed.Store(true) }

// drain returns every queued event without blocking.
func (s *fakeSink) drain(t *testing.T) []Event {
	t.Helper()
	var out []Event
	for {
		select {
		case frame := <-s.frames:
			var evt Event
			require.NoError(t, json.Unmarshal(frame, &evt))
			out = append(out, evt)
		default:
			return out
		}
	}
}

func eventTypes(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}
