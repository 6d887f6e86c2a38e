// Package influxdb records show telemetry in InfluxDB.
//
// Three measurements are written:
//   - sensor_readings: every reading from a declared sensor board, numeric
//     or not. This is the long-term capture used to tune thresholds.
//   - prop_triggers: each triggered poll with its admitted/dropped outcome.
//   - prop_activations: steps sent and audio played per activation.
//
// Telemetry is optional. With influxdb.enabled=false, Connect returns
// ErrDisabled and the controller runs without it.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//	client.WriteReading("54:32:04:46:61:88", "coffin-sensor", "1", 1, true, time.Now())
package influxdb
