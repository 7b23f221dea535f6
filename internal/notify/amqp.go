package notify

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/antonminaichev/mediexpress/internal/types/order"
)

const StatusExchange = "order_status_fanout"

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends status events to a durable fanout exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	log      *zap.Logger
}

func DialAMQP(url string, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(StatusExchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare %s: %w", StatusExchange, err)
	}
	p := newAMQPPublisher(ch, log)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{ch: ch, exchange: StatusExchange, log: log}
}

func (p *AMQPPublisher) OrderPlaced(ctx context.Context, o *order.Order) {
	p.publish(ctx, placedEvent(o))
}

func (p *AMQPPublisher) StageAdvanced(ctx context.Context, o *order.Order, t order.Transition) {
	p.publish(ctx, transitionEvent(o, t))
}

func (p *AMQPPublisher) publish(ctx context.Context, ev StatusEvent) {
	body, err := encode(ev)
	if err != nil {
		p.log.Warn("encode status event", zap.Error(err))
		return
	}
	ctx, cancel := detached(ctx)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.Timestamp,
		ContentType:  "application/json",
		MessageId:    ev.EventID,
		Body:         body,
	})
	if err != nil {
		p.log.Warn("publish status event",
			zap.String("order_id", ev.OrderID),
			zap.String("new_status", string(ev.NewStatus)),
			zap.Error(err),
		)
	}
}

func (p *AMQPPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
