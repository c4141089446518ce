// Package influxdb records panel history in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health monitoring.
//
// # Measurements
//
//   - entity_state: one point per observed state change, tagged by kind,
//     id and name
//   - review_event: one point per delivered review event, tagged by
//     category and message value
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // history is optional
//	}
//	defer client.Close()
//
//	client.WriteEntityState(snapshot, time.Now())
//
// # Error Handling
//
// Writes are batched according to batch_size and flush_interval, so write
// failures arrive asynchronously through SetOnError. Connection and health
// check errors are returned directly.
package influxdb
