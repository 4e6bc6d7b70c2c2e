package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeEvents   Exchange = "codeshift.events"
	ExchangeCommands Exchange = "codeshift.commands"
)

// Queues — имена очередей.
const (
	QueueRunsRequested Queue = "runs.requested"
)

// Routing keys.
const (
	RoutingKeyRunStarted   RoutingKey = "run.started"
	RoutingKeyRunFinished  RoutingKey = "run.finished"
	RoutingKeyFileUpdated  RoutingKey = "file.updated"
	RoutingKeyFileLog      RoutingKey = "file.log"
	RoutingKeyRunRequested RoutingKey = "run.requested"
)

// SetupTopology объявляет exchanges, очереди и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
//
// События идут в topic exchange: подписчики сами выбирают, что слушать
// (например, "file.*"). Команды — direct в одну очередь.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeEvents, amqp.ExchangeTopic},
		{ExchangeCommands, amqp.ExchangeDirect},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		string(QueueRunsRequested), // name
		true,                       // durable
		false,                      // delete when unused
		false,                      // exclusive
		false,                      // no-wait
		nil,                        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueRunsRequested, err)
	}
	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	err := ch.QueueBind(
		string(QueueRunsRequested),     // queue name
		string(RoutingKeyRunRequested), // routing key
		string(ExchangeCommands),       // exchange
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", QueueRunsRequested, ExchangeCommands, err)
	}
	return nil
}
