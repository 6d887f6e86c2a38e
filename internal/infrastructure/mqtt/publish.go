package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound payloads. Actuator commands are a few
// dozen bytes; anything near this is a bug.
const maxPayloadSize = 1 << 16

// Publish sends a message to the specified MQTT topic and waits for the
// broker acknowledgement (or the publish timeout).
//
// Actuator commands are sent with retained=false: a board that reconnects
// must not replay an old scare.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
