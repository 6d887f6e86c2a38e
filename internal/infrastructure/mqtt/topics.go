package mqtt

import (
	"fmt"
	"strings"
)

// Topic roots.
const (
	// TopicPrefixDevice is the base for all prop board topics.
	TopicPrefixDevice = "device"

	// TopicPrefixSystem is the base for controller topics.
	TopicPrefixSystem = "hauntlogic/system"
)

// Topic leaf names under device/<id>/.
const (
	LeafSensor   = "sensor"
	LeafActuator = "actuator"
)

// Topics provides builders for the show's MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.DeviceActuator("54:32:04:46:61:40")
//	// Returns: "device/54:32:04:46:61:40/actuator"
type Topics struct{}

// DeviceSensor returns the topic a board publishes readings on.
func (Topics) DeviceSensor(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixDevice, deviceID, LeafSensor)
}

// DeviceActuator returns the topic a board listens for commands on.
func (Topics) DeviceActuator(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixDevice, deviceID, LeafActuator)
}

// AllSensors matches readings from every board.
func (Topics) AllSensors() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixDevice, LeafSensor)
}

// SystemStatus returns the retained controller status topic.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ParseDeviceTopic splits "device/<id>/<leaf>" into its parts.
// The ok result is false for any other shape.
func ParseDeviceTopic(topic string) (deviceID, leaf string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != TopicPrefixDevice || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
