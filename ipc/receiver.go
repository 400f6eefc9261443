package ipc

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

var ErrStopTimeout = errors.New("ipc: receiver did not stop in time")

const (
	receiveBufferSize = 65535
	pollInterval      = 100 * time.Millisecond
)

// Receiver reads OSC packets on its own goroutine and pushes every message
// onto an Inbox. It never interprets messages itself.
type Receiver struct {
	conn    *net.UDPConn
	inbox   *Inbox
	logger  *log.Logger
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Listen binds addr and starts the receive loop.
func Listen(addr string, inbox *Inbox, logger *log.Logger) (*Receiver, error) {
	if inbox == nil {
		return nil, errors.New("ipc: listen: nil inbox")
	}
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("ipc: resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen %s: %w", addr, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Receiver{
		conn:    conn,
		inbox:   inbox,
		logger:  logger,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.run()
	return r, nil
}

// Addr returns the bound local address.
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Stop signals the receive loop and waits up to timeout for it to exit. It
// returns ErrStopTimeout if the loop is still running; the caller proceeds
// either way.
func (r *Receiver) Stop(timeout time.Duration) error {
	var err error
	r.once.Do(func() {
		close(r.closeCh)
		err = r.conn.Close()
	})

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.done:
		return err
	case <-timer.C:
		return ErrStopTimeout
	}
}

func (r *Receiver) stopping() bool {
	select {
	case <-r.closeCh:
		return true
	default:
		return false
	}
}

func (r *Receiver) run() {
	defer close(r.done)
	buf := make([]byte, receiveBufferSize)
	for {
		if r.stopping() {
			return
		}
		_ = r.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if r.stopping() || errors.Is(err, net.ErrClosed) {
				return
			}
			r.logger.Printf("ipc: receive: %v", err)
			continue
		}
		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			r.logger.Printf("ipc: malformed packet (%d bytes): %v", n, err)
			continue
		}
		r.push(packet)
	}
}

func (r *Receiver) push(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		args := make([]any, len(p.Arguments))
		copy(args, p.Arguments)
		r.inbox.Push(Message{Address: p.Address, Args: args})
	case *osc.Bundle:
		for _, m := range p.Messages {
			r.push(m)
		}
		for _, b := range p.Bundles {
			r.push(b)
		}
	}
}
