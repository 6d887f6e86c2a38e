package actuation

import (
	"github.com/benbjohnson/clock"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/mqtt"
)

// Publisher is the interface for sending commands to actuator boards.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the logging interface used by the dispatcher.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Result summarises one plan execution.
type Result struct {
	Sent    int
	Failed  int
	Skipped int
}

// Dispatcher sends plan steps to actuator topics in order.
//
// Sends are fire-and-forget: a failed publish is logged and counted, the
// plan carries on, and nothing is retried. Inter-step delays always run
// to completion.
//
// Thread Safety: Execute is safe for concurrent use by different props.
type Dispatcher struct {
	publisher Publisher
	clock     clock.Clock
	qos       byte
	logger    Logger
}

// NewDispatcher creates a dispatcher publishing at the given QoS.
func NewDispatcher(publisher Publisher, clk clock.Clock, qos byte, logger Logger) *Dispatcher {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Dispatcher{
		publisher: publisher,
		clock:     clk,
		qos:       qos,
		logger:    logger,
	}
}

// Execute runs the plan for the given 1-based activation number. A step
// that is not due is skipped together with its delay. The delay of the last
// due step is not waited here; it belongs to the caller's hold.
func (d *Dispatcher) Execute(plan Plan, activation int) Result {
	var res Result
	topics := mqtt.Topics{}
	last := plan.lastDue(activation)

	for i, step := range plan.Steps {
		if !step.Due(activation) {
			res.Skipped++
			continue
		}

		topic := topics.DeviceActuator(step.ActuatorID)
		if err := d.publisher.Publish(topic, []byte(step.Command), d.qos, false); err != nil {
			res.Failed++
			d.logger.Warn("publish failed",
				"topic", topic,
				"payload", step.Command,
				"error", err,
			)
		} else {
			res.Sent++
			d.logger.Info("published",
				"topic", topic,
				"payload", step.Command,
			)
		}

		if i < last && step.DelayAfter > 0 {
			d.clock.Sleep(step.DelayAfter)
		}
	}

	return res
}
