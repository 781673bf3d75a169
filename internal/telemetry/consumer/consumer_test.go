package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeReader hands out msgs, then blocks until ctx is cancelled. cancel fires once all are committed.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	fetchErrs []error
	committed []int64
	cancel    context.CancelFunc
	total     int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	if len(r.committed) == r.total {
		r.cancel()
	}
	return nil
}

type fakePusher struct {
	mu     sync.Mutex
	pushed []string
	failOn string
}

func (p *fakePusher) PushEventJSON(ctx context.Context, raw []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if string(raw) == p.failOn {
		return errors.New("loki: 400 bad request")
	}
	p.pushed = append(p.pushed, string(raw))
	return nil
}

func TestRun_PushesAndCommitsEveryMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		msgs: []kafka.Message{
			{Offset: 1, Value: []byte(`{"event_type":"account.registered"}`)},
			{Offset: 2, Value: []byte(`not json`)},
			{Offset: 3, Value: []byte(`{"event_type":"account.verified"}`)},
		},
		fetchErrs: []error{errors.New("broker not available")},
		cancel:    cancel,
		total:     3,
	}
	pusher := &fakePusher{failOn: "not json"}
	core, logs := observer.New(zapcore.WarnLevel)

	if err := New(reader, pusher, zap.New(core)).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(pusher.pushed) != 2 {
		t.Errorf("pushed %d events, want 2", len(pusher.pushed))
	}
	if len(reader.committed) != 3 {
		t.Errorf("committed %v, want all three offsets", reader.committed)
	}
	if logs.FilterMessage("worker: loki push failed").Len() != 1 {
		t.Error("failed push should be logged once")
	}
	if logs.FilterMessage("worker: kafka fetch failed").Len() != 1 {
		t.Error("fetch error should be logged once")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader := &fakeReader{cancel: cancel}
	if err := New(reader, &fakePusher{}, nil).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
