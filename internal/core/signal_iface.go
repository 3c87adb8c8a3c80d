package core

// Frame is an encoded outbound message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: it returns ErrBackpressure when the outbound
// queue is full and ErrConnClosed once Close has been called.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
