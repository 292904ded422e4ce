// Package httpserver hosts the Beacon transports: JSON polling, bounded
// long-poll, Server-Sent Events, and WebSocket, all sharing one notify
// service so a client can switch transports without losing its cursor.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := httpserver.New(rt, nil)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
