package timing

import (
	"errors"
	"net"
	"os"
	"sync"
	"time"
)

const (
	// SyncPort is the well-known port the external-trigger strategy listens
	// on.
	SyncPort = 5000

	// DefaultSyncAddr listens on SyncPort on all interfaces.
	DefaultSyncAddr = ":5000"

	// triggerBufferSize is the largest message consumed by a single receive.
	triggerBufferSize = 2048
)

// WaitResult tells how a TriggerChannel wait ended.
type WaitResult int

// The outcomes of TriggerChannel.Wait.
const (
	// NoPeer means that no controller is connected and none is pending.
	NoPeer WaitResult = iota

	// PeerAccepted means that a pending controller has just been accepted.
	PeerAccepted

	// Triggered means that the connected controller sent a trigger.
	Triggered

	// PeerDisconnected means that the connected controller has left.
	PeerDisconnected

	// TimedOut means that the controller did not send a trigger before the
	// receive timeout.
	TimedOut

	// ChannelClosed means that the channel has been closed.
	ChannelClosed
)

var waitResultNames = map[WaitResult]string{
	NoPeer:           "NoPeer",
	PeerAccepted:     "PeerAccepted",
	Triggered:        "Triggered",
	PeerDisconnected: "PeerDisconnected",
	TimedOut:         "TimedOut",
	ChannelClosed:    "ChannelClosed",
}

func (r WaitResult) String() string {
	if name, ok := waitResultNames[r]; ok {
		return name
	}

	return "WaitResult(unknown)"
}

// A TriggerChannel is a TCP server that accepts at most one controller at a
// time. Each message from the controller authorizes one frame.
//
// Wait must only be called from one goroutine. Close may be called from any
// goroutine and unblocks a pending Wait.
type TriggerChannel struct {
	lock     sync.Mutex
	listener *net.TCPListener
	peer     net.Conn
	closed   bool

	buf            []byte
	receiveTimeout time.Duration
}

// ListenTrigger opens a TriggerChannel on the given address. A zero receive
// timeout makes Wait block until the connected controller sends a message or
// leaves.
func ListenTrigger(
	addr string,
	receiveTimeout time.Duration,
) (*TriggerChannel, error) {
	listener, err := listenTCP(addr)
	if err != nil {
		return nil, err
	}

	c := &TriggerChannel{
		listener:       listener,
		buf:            make([]byte, triggerBufferSize),
		receiveTimeout: receiveTimeout,
	}

	return c, nil
}

// Addr returns the address the channel listens on.
func (c *TriggerChannel) Addr() net.Addr {
	return c.listener.Addr()
}

// Connected tells if a controller is currently connected.
func (c *TriggerChannel) Connected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.peer != nil
}

// Wait waits for the permission to advance one frame. Without a connected
// controller it never blocks; it only accepts a controller that is already
// pending. With a connected controller it blocks until a message arrives,
// the controller leaves, or the receive timeout expires.
func (c *TriggerChannel) Wait() WaitResult {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return ChannelClosed
	}

	peer := c.peer
	c.lock.Unlock()

	if peer == nil {
		return c.acceptPending()
	}

	return c.receive(peer)
}

func (c *TriggerChannel) acceptPending() WaitResult {
	ready, err := pollReadable(c.listener)
	if err != nil || !ready {
		return NoPeer
	}

	err = c.listener.SetDeadline(time.Now().Add(acceptGrace))
	if err != nil {
		return NoPeer
	}

	conn, err := c.listener.AcceptTCP()
	_ = c.listener.SetDeadline(time.Time{})

	if err != nil {
		return NoPeer
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		conn.Close()
		return ChannelClosed
	}

	c.peer = conn

	return PeerAccepted
}

func (c *TriggerChannel) receive(peer net.Conn) WaitResult {
	if c.receiveTimeout > 0 {
		_ = peer.SetReadDeadline(time.Now().Add(c.receiveTimeout))
	}

	n, err := peer.Read(c.buf)
	if n > 0 {
		return Triggered
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return TimedOut
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ChannelClosed
	}

	// EOF and any other read error both end the session with this peer.
	peer.Close()

	if c.peer == peer {
		c.peer = nil
	}

	return PeerDisconnected
}

// Close disconnects the controller, if any, and stops listening. It is safe
// to call Close more than once.
func (c *TriggerChannel) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	var peerErr error
	if c.peer != nil {
		peerErr = c.peer.Close()
		c.peer = nil
	}

	return errors.Join(peerErr, c.listener.Close())
}
