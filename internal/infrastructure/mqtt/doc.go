// Package mqtt provides the pub/sub connection between the controller and
// the prop boards.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing actuator commands
//   - Sensor topic subscriptions, restored after reconnect
//   - Last Will and Testament (LWT) on the controller status topic
//
// # Topics
//
// Every prop board is addressed by its hardware ID (usually the MAC of its
// radio):
//
//	device/<id>/sensor     board → controller, ASCII integer readings
//	device/<id>/actuator   controller → board, opaque command strings
//	hauntlogic/system/status  retained controller online/offline status
//
// Message ordering is preserved per client so readings from one board reach
// the router in the order the broker delivered them.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.DeviceSensor(id), 1, router.HandleMessage)
//	client.Publish(mqtt.Topics{}.DeviceActuator(id), []byte("S500,300"), 1, false)
package mqtt
