package ipc

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

const (
	defaultSendTimeout = 2 * time.Millisecond
	dropLogInterval    = time.Second
)

// Client sends OSC commands over a connected UDP socket. A send that cannot
// complete within the write timeout is abandoned. Failures are counted and
// logged at most once per second, never returned.
type Client struct {
	conn    *net.UDPConn
	timeout time.Duration
	logger  *log.Logger
	now     func() time.Time

	sent        uint64
	dropped     uint64
	unlogged    uint64
	lastDropLog time.Time
}

type ClientOption func(*Client)

func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithSendTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func withClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func NewClient(addr string, opts ...ClientOption) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("ipc: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("ipc: dial %s: %w", addr, err)
	}
	c := &Client{
		conn:    conn,
		timeout: defaultSendTimeout,
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dial opens a Client for addr. If the socket cannot be opened it logs the
// reason and returns a Stub so callers run without audio sync.
func Dial(addr string, opts ...ClientOption) Sender {
	c, err := NewClient(addr, opts...)
	if err != nil {
		fallback := &Client{logger: log.Default()}
		for _, opt := range opts {
			opt(fallback)
		}
		fallback.logger.Printf("ipc: audio transport unavailable, running without audio sync: %v", err)
		return Stub{}
	}
	return c
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Stats returns the number of messages written and dropped so far.
func (c *Client) Stats() (sent, dropped uint64) {
	if c == nil {
		return 0, 0
	}
	return c.sent, c.dropped
}

func (c *Client) CreateVoice(id int32, voiceType, resource string) {
	c.send(AddrVoiceCreate, id, voiceType, resource)
}

func (c *Client) CreateVoiceExtended(spec VoiceSpec) {
	c.send(AddrVoiceCreateEx, createExArgs(spec)...)
}

func (c *Client) DestroyVoice(id int32) {
	c.send(AddrVoiceDestroy, id)
}

func (c *Client) UpdateParameter(id int32, param string, value float64) {
	if param == "" {
		return
	}
	c.send(AddrVoiceUpdate+param, id, float32(value))
}

func (c *Client) UpdateVoicePositions(positions []VoicePosition) {
	if len(positions) == 0 {
		return
	}
	c.send(AddrVoicePositions, positionArgs(positions)...)
}

func (c *Client) SetListenerPosition(x, y float64) {
	c.send(AddrListenerPos, float32(x), float32(y))
}

func (c *Client) SetListenerConfig(radiusPx, nearRatio float64) {
	c.send(AddrListenerSet, float32(radiusPx), float32(nearRatio))
}

func (c *Client) StopAll() {
	c.send(AddrEngineStopAll)
}

func (c *Client) send(addr string, args ...any) {
	if c == nil || c.conn == nil {
		return
	}
	data, err := osc.NewMessage(addr, args...).MarshalBinary()
	if err != nil {
		c.drop(addr, err)
		return
	}
	if c.timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	if _, err := c.conn.Write(data); err != nil {
		c.drop(addr, err)
		return
	}
	c.sent++
}

func (c *Client) drop(addr string, err error) {
	c.dropped++
	c.unlogged++
	now := c.now()
	if !c.lastDropLog.IsZero() && now.Sub(c.lastDropLog) < dropLogInterval {
		return
	}
	c.logger.Printf("ipc: dropped %d message(s), last %s: %v", c.unlogged, addr, err)
	c.unlogged = 0
	c.lastDropLog = now
}
