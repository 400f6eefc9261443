package ipc

import (
	"bytes"
	"log"
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

func boolPtr(b bool) *bool          { return &b }
func float64Ptr(f float64) *float64 { return &f }

func TestCreateExArgs(t *testing.T) {
	base := []any{int32(3), "sampler", "kick.wav", float32(10), float32(20), float32(0.5)}
	cases := []struct {
		name string
		spec VoiceSpec
		tail []any
	}{
		{"no_flags", VoiceSpec{}, nil},
		{"pitch_only", VoiceSpec{PitchOnGrid: boolPtr(true)}, []any{int32(1)}},
		{"looping_pads_pitch", VoiceSpec{Looping: boolPtr(true)}, []any{int32(0), int32(1)}},
		{"volume_pads_both", VoiceSpec{Volume: float64Ptr(0.25)}, []any{int32(0), int32(0), float32(0.25)}},
		{"all_flags", VoiceSpec{PitchOnGrid: boolPtr(false), Looping: boolPtr(true), Volume: float64Ptr(1)}, []any{int32(0), int32(1), float32(1)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec := c.spec
			spec.ID, spec.Type, spec.Resource = 3, "sampler", "kick.wav"
			spec.X, spec.Y, spec.Amplitude = 10, 20, 0.5
			want := append(append([]any{}, base...), c.tail...)
			if got := createExArgs(spec); !reflect.DeepEqual(got, want) {
				t.Fatalf("expected %v, got %v", want, got)
			}
		})
	}
}

func listenLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *net.UDPConn) *osc.Message {
	t.Helper()
	buf := make([]byte, 4096)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	packet, err := osc.ParsePacket(string(buf[:n]))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	msg, ok := packet.(*osc.Message)
	if !ok {
		t.Fatalf("expected message, got %T", packet)
	}
	return msg
}

func TestClientSendsCommands(t *testing.T) {
	server := listenLoopback(t)
	c, err := NewClient(server.LocalAddr().String(), WithSendTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.CreateVoiceExtended(VoiceSpec{ID: 1, Type: "synth", Resource: "pad", X: 1, Y: 2, Amplitude: 0.8, Looping: boolPtr(true)})
	msg := readMessage(t, server)
	if msg.Address != AddrVoiceCreateEx || len(msg.Arguments) != 8 {
		t.Fatalf("unexpected create_ex: %v %v", msg.Address, msg.Arguments)
	}

	c.UpdateVoicePositions(nil)
	c.UpdateVoicePositions([]VoicePosition{{ID: 1, X: 5, Y: 6}, {ID: 2, X: 7, Y: 8}})
	msg = readMessage(t, server)
	want := []any{int32(1), float32(5), float32(6), int32(2), float32(7), float32(8)}
	if msg.Address != AddrVoicePositions || !reflect.DeepEqual(msg.Arguments, want) {
		t.Fatalf("expected batched positions %v, got %s %v", want, msg.Address, msg.Arguments)
	}

	c.UpdateParameter(2, "impact", 0.5)
	msg = readMessage(t, server)
	if msg.Address != "/voice/update/impact" || !reflect.DeepEqual(msg.Arguments, []any{int32(2), float32(0.5)}) {
		t.Fatalf("unexpected parameter update: %s %v", msg.Address, msg.Arguments)
	}

	c.DestroyVoice(1)
	msg = readMessage(t, server)
	if msg.Address != AddrVoiceDestroy || !reflect.DeepEqual(msg.Arguments, []any{int32(1)}) {
		t.Fatalf("unexpected destroy: %s %v", msg.Address, msg.Arguments)
	}

	c.StopAll()
	if msg = readMessage(t, server); msg.Address != AddrEngineStopAll || len(msg.Arguments) != 0 {
		t.Fatalf("unexpected stop: %s %v", msg.Address, msg.Arguments)
	}

	if sent, dropped := c.Stats(); sent != 5 || dropped != 0 {
		t.Fatalf("expected 5 sent 0 dropped, got %d/%d", sent, dropped)
	}
}

func TestClientSwallowsAndThrottlesFailures(t *testing.T) {
	server := listenLoopback(t)
	var buf bytes.Buffer
	now := time.Unix(100, 0)
	c, err := NewClient(server.LocalAddr().String(),
		WithLogger(log.New(&buf, "", 0)),
		withClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Close()

	for i := 0; i < 3; i++ {
		c.StopAll()
	}
	if _, dropped := c.Stats(); dropped != 3 {
		t.Fatalf("expected 3 drops, got %d", dropped)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 1 {
		t.Fatalf("expected one throttled log line, got %d: %q", lines, buf.String())
	}

	now = now.Add(2 * time.Second)
	c.StopAll()
	if !strings.Contains(buf.String(), "dropped 3 message(s)") {
		t.Fatalf("expected accumulated drop count, got %q", buf.String())
	}
}

func TestDialFallsBackToStub(t *testing.T) {
	var buf bytes.Buffer
	if _, ok := Dial("not-a-valid-address", WithLogger(log.New(&buf, "", 0))).(Stub); !ok {
		t.Fatal("expected stub sender for an unusable address")
	}
	if !strings.Contains(buf.String(), "ipc: audio transport unavailable") {
		t.Fatalf("expected fallback logged through the option logger, got %q", buf.String())
	}
}
