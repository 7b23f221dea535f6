package notify

import (
	"context"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/antonminaichev/mediexpress/internal/types/order"
)

const DefaultTopic = "order-status"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes status events keyed by order ID, so one order's events
// stay on one partition in order.
type KafkaPublisher struct {
	w   messageWriter
	log *zap.Logger
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}, log)
}

func newKafkaPublisher(w messageWriter, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{w: w, log: log}
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, o *order.Order) {
	p.publish(ctx, placedEvent(o))
}

func (p *KafkaPublisher) StageAdvanced(ctx context.Context, o *order.Order, t order.Transition) {
	p.publish(ctx, transitionEvent(o, t))
}

func (p *KafkaPublisher) publish(ctx context.Context, ev StatusEvent) {
	body, err := encode(ev)
	if err != nil {
		p.log.Warn("encode status event", zap.Error(err))
		return
	}
	ctx, cancel := detached(ctx)
	defer cancel()

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: body,
		Time:  ev.Timestamp,
	})
	if err != nil {
		p.log.Warn("write status event",
			zap.String("order_id", ev.OrderID),
			zap.String("new_status", string(ev.NewStatus)),
			zap.Error(err),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
