// Package bridge connects the Inception client to MQTT.
//
// It publishes the entity mirror and review events and executes control
// commands received from the broker.
//
// # Topics
//
// All topics live under the configured prefix (default "inception"):
//
//	inception/state/{kind}/{id}       retained, published on state change
//	inception/review/{category}       review events that pass the flag gate
//	inception/command/{kind}/{id}     inbound commands
//	inception/response/{command_id}   command results
//	inception/bridge/status           online/offline
//	inception/bridge/health           periodic health report
//
// # Commands
//
// A command payload names a snake_case action:
//
//	{"id": "c-1", "action": "timed_unlock", "time_secs": 5}
//
// The result is published on the response topic under the command id, or a
// generated UUID when the command carries none.
//
// # Recording
//
// When a Recorder is configured, every published state change and review
// event is also written to it (InfluxDB in production).
package bridge
