// Package httpingress receives remotely-originated events over HTTP and
// re-emits them on a local bus. It is the inbound counterpart of the URL
// dispatcher: a producer's webhook POST becomes a local emission.
//
//	ing, err := httpingress.New(b, httpingress.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	mux.Handle("/", ing.Handler())
//
// The adapter decodes the wire envelope and nothing more; authentication and
// domain validation belong to middleware in the mounting application.
package httpingress
