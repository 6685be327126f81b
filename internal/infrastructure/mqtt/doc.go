// Package mqtt provides MQTT client connectivity for Garage Door Core.
//
// This package manages:
//   - Connection to the MQTT broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The door bridge uses MQTT as its only external interface: the contact
// sensor, the command topic, and the published door/stuck state all pass
// through the same broker connection.
//
//	home automation hub ↔ MQTT Broker ↔ Garage Door Core
//
// # Security Considerations
//
//   - TLS is recommended when the broker is reachable outside the LAN (cfg.Broker.TLS=true)
//   - Credentials are validated against the broker's own ACL
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to a local broker
//   - Publish latency: <10ms for QoS 1 to a local broker
//   - Reconnect: Exponential backoff 1s-60s
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(cfg.Door.Detector.SensorTopic, 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	client.PublishRetained(cfg.Door.StateTopic, []byte("closed"))
package mqtt
