package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/antonminaichev/mediexpress/internal/types/order"
)

type fakeChannel struct {
	exchange string
	msgs     []amqp.Publishing
	err      error
	closed   bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.exchange = exchange
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

var (
	at     = time.Date(2026, 1, 6, 10, 0, 30, 0, time.UTC)
	sample = &order.Order{OrderID: "MX-20260106-000042", CreatedAt: at.Add(-30 * time.Second)}
	step   = order.Transition{From: order.StagePreparing, To: order.StageDispatched, At: at}
)

func decodeEvent(t *testing.T, raw []byte) StatusEvent {
	t.Helper()
	var ev StatusEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func TestAMQPPublishesTransitions(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, nil)

	p.OrderPlaced(context.Background(), sample)
	p.StageAdvanced(context.Background(), sample, step)

	require.Len(t, ch.msgs, 2)
	assert.Equal(t, StatusExchange, ch.exchange)

	placed := decodeEvent(t, ch.msgs[0].Body)
	assert.Equal(t, order.StagePlaced, placed.NewStatus)
	assert.Empty(t, placed.OldStatus)

	moved := decodeEvent(t, ch.msgs[1].Body)
	assert.Equal(t, sample.OrderID, moved.OrderID)
	assert.Equal(t, order.StagePreparing, moved.OldStatus)
	assert.Equal(t, order.StageDispatched, moved.NewStatus)
	assert.True(t, at.Equal(moved.Timestamp))
	assert.NotEmpty(t, moved.EventID)
	assert.NotEqual(t, placed.EventID, moved.EventID)

	assert.Equal(t, amqp.Persistent, ch.msgs[1].DeliveryMode)
	assert.Equal(t, "application/json", ch.msgs[1].ContentType)
	assert.Equal(t, moved.EventID, ch.msgs[1].MessageId)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublishErrorsAreLoggedOnly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	newAMQPPublisher(&fakeChannel{err: errors.New("channel closed")}, log).StageAdvanced(context.Background(), sample, step)
	newKafkaPublisher(&fakeWriter{err: errors.New("no brokers")}, log).StageAdvanced(context.Background(), sample, step)

	assert.Equal(t, 2, logs.Len())
}

func TestKafkaKeysByOrder(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, nil)

	p.StageAdvanced(context.Background(), sample, step)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, sample.OrderID, string(w.msgs[0].Key))
	ev := decodeEvent(t, w.msgs[0].Value)
	assert.Equal(t, order.StageDispatched, ev.NewStatus)
}

func TestPublishSurvivesCancelledRequest(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.OrderPlaced(ctx, sample)
	assert.Len(t, w.msgs, 1)
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092,"))
	assert.Empty(t, ParseBrokers(""))
}
