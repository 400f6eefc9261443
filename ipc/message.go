// Package ipc carries commands to the external audio engine and telemetry
// back from it over OSC on UDP. Outbound sends are fire-and-forget; inbound
// messages are queued for the simulation thread to drain.
package ipc

import "fmt"

const (
	DefaultSendAddr   = "127.0.0.1:9001"
	DefaultListenAddr = "127.0.0.1:9002"
)

const (
	AddrVoiceCreate     = "/voice/create"
	AddrVoiceCreateEx   = "/voice/create_ex"
	AddrVoiceDestroy    = "/voice/destroy"
	AddrVoiceUpdate     = "/voice/update/"
	AddrVoicePositions  = "/voices/update_positions"
	AddrListenerPos     = "/listener/pos"
	AddrListenerSet     = "/listener/set"
	AddrEngineStopAll   = "/engine/stopAll"
	AddrAudioDevices    = "/info/audioDeviceList"
	AddrCurrentSettings = "/info/currentSettings"
	AddrMasterGain      = "/info/masterGain"
	AddrMidiDevices     = "/info/midiDeviceList"
	AddrCPULoad         = "/info/cpuLoad"
)

// Message is one inbound OSC message: an address and its positional
// arguments in wire order.
type Message struct {
	Address string
	Args    []any
}

func (m Message) String() string {
	return fmt.Sprintf("%s %v", m.Address, m.Args)
}

// VoiceSpec describes a voice to create. The optional flags are sent only
// when set.
type VoiceSpec struct {
	ID          int32
	Type        string
	Resource    string
	X, Y        float64
	Amplitude   float64
	PitchOnGrid *bool
	Looping     *bool
	Volume      *float64
}

// VoicePosition is one entry of a batched position update.
type VoicePosition struct {
	ID   int32
	X, Y float64
}

// Sender is the outbound command surface of the audio engine. Implementations
// never report delivery failures to the caller.
type Sender interface {
	CreateVoice(id int32, voiceType, resource string)
	CreateVoiceExtended(spec VoiceSpec)
	DestroyVoice(id int32)
	UpdateParameter(id int32, param string, value float64)
	UpdateVoicePositions(positions []VoicePosition)
	SetListenerPosition(x, y float64)
	SetListenerConfig(radiusPx, nearRatio float64)
	StopAll()
}

func boolArg(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// createExArgs lays out the /voice/create_ex arguments. The optional flags
// are positional, so an unset flag that precedes a set one is sent as the
// engine default (off); trailing unset flags are omitted.
func createExArgs(spec VoiceSpec) []any {
	args := []any{spec.ID, spec.Type, spec.Resource, float32(spec.X), float32(spec.Y), float32(spec.Amplitude)}

	last := -1
	if spec.PitchOnGrid != nil {
		last = 0
	}
	if spec.Looping != nil {
		last = 1
	}
	if spec.Volume != nil {
		last = 2
	}
	if last >= 0 {
		pitch := false
		if spec.PitchOnGrid != nil {
			pitch = *spec.PitchOnGrid
		}
		args = append(args, boolArg(pitch))
	}
	if last >= 1 {
		loop := false
		if spec.Looping != nil {
			loop = *spec.Looping
		}
		args = append(args, boolArg(loop))
	}
	if last >= 2 {
		args = append(args, float32(*spec.Volume))
	}
	return args
}

func positionArgs(positions []VoicePosition) []any {
	args := make([]any, 0, len(positions)*3)
	for _, p := range positions {
		args = append(args, p.ID, float32(p.X), float32(p.Y))
	}
	return args
}
