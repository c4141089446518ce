// Package inception is a client for the Inner Range Inception panel REST API.
//
// The client keeps an in-memory mirror of the panel's doors, inputs,
// outputs and areas, built once from the summary endpoints. Two loops keep
// it current once Connect is called:
//
//   - the state monitor long-polls /monitor-updates and applies public
//     state changes to the mirror
//   - the review poller pages through /review and hands each new event to
//     the registered review callbacks
//
// Data callbacks fire after every monitor cycle whether or not anything
// changed, so subscribers can treat them as a liveness signal.
//
// # Errors
//
// Client.Request returns *Error values classified as authentication,
// communication or generic failures. Use errors.Is with ErrAuthentication,
// ErrCommunication or ErrGeneric to branch on the kind.
//
// # Usage
//
//	client, err := inception.New(inception.Options{
//	    Host:  "http://192.168.1.50",
//	    Token: token,
//	})
//	if err != nil {
//	    return err
//	}
//	client.RegisterDataCallback("ui", func(d *inception.Data) { ... })
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close()
package inception
