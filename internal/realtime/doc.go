// Package realtime keeps live connections organized into broadcast channels.
//
// # Channels
//
// A channel is either the personal notification channel of a user
// ("user:{id}") or the channel of a chat room ("room:{id}"). Channel
// membership is volatile: it lives only in the Registry and is rebuilt from
// nothing when the process restarts.
//
// # Components
//
//   - Registry: channel id -> live connections, connection -> joined channels.
//     Locking is per channel; a connection's purge holds every one of its
//     channel locks at once so it leaves all of them atomically.
//   - Dispatcher: best-effort fan-out of one event to the current members of
//     a channel. No retry, no replay. Clients that were not connected re-read
//     history and unread notifications over HTTP.
//   - Manager / Connection: the per-connection state machine
//     Connecting -> Open -> Closing -> Closed driven by the transport.
//
// Transports plug in through the Sink interface.
package realtime
