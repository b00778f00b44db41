// Package inspect serves a read-only HTTP view of a running weft.App:
// scene-graph snapshots, subscription counts, Prometheus metrics and a
// WebSocket stats stream.
//
// The server is optional tooling. Mount Router on an existing server, or
// call Start for a standalone listener:
//
//	srv := inspect.NewServer(app, inspect.WithGatherer(reg))
//	addr, _ := srv.Start(":6060")
package inspect
