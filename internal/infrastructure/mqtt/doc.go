// Package mqtt provides MQTT client connectivity for the Inception bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS guarantees and a 1MB payload cap
//   - Topic subscriptions that survive reconnects
//   - An offline Last Will and Testament on the bridge status topic
//
// # Topics
//
// All topics share a configurable prefix (default "inception"); see Topics.
// Entity state is retained so dashboards see the current panel state as
// soon as they subscribe.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, mqtt.NewTopics(cfg.Bridge.TopicPrefix))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := client.Topics().State("door", "4ab1c2")
//	err = client.PublishRetained(topic, payload)
package mqtt
