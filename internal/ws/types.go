package ws

const (
	// server - client
	MsgReady = "ready"
	MsgState = "state"
	MsgError = "error"

	// client - server
	MsgPing = "ping"
	MsgPong = "pong"
)
