package dispatcher

// Transport is the message-oriented duplex channel the external transport
// collaborator supplies per connection. Receive blocks until a whole
// message is available and returns io.EOF (or an implementation error
// wrapping it) at end of stream. Send must be safe for concurrent use:
// live pages may push from application goroutines while the receive loop
// answers requests. Close must be idempotent.
type Transport interface {
	Receive() ([]byte, error)
	Send(data []byte) error
	Close() error
}
