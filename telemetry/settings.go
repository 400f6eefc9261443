// Package telemetry interprets the audio engine's /info messages into local
// settings state. It is only touched from the simulation goroutine.
package telemetry

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/milk9111/soundbox/common"
	"github.com/milk9111/soundbox/ipc"
)

// Settings is the engine state last reported over the inbound channel.
type Settings struct {
	// AudioDevices and MidiDevices map a device type (the first argument of
	// the list message, e.g. "output") to device names in reported order.
	AudioDevices map[string][]string
	MidiDevices  map[string][]string
	Current      map[string]string
	MasterGain   float64
	CPULoad      float64

	Applied uint64
	Ignored uint64

	logger *log.Logger
}

func NewSettings(logger *log.Logger) *Settings {
	if logger == nil {
		logger = log.Default()
	}
	return &Settings{
		AudioDevices: make(map[string][]string),
		MidiDevices:  make(map[string][]string),
		Current:      make(map[string]string),
		logger:       logger,
	}
}

// Apply folds one inbound message into the settings. It reports false for
// addresses it does not handle and for malformed arguments.
func (s *Settings) Apply(msg ipc.Message) bool {
	ok := s.apply(msg)
	if ok {
		s.Applied++
	} else {
		s.Ignored++
	}
	return ok
}

func (s *Settings) apply(msg ipc.Message) bool {
	switch msg.Address {
	case ipc.AddrAudioDevices:
		return applyDeviceList(s.AudioDevices, msg.Args)
	case ipc.AddrMidiDevices:
		return applyDeviceList(s.MidiDevices, msg.Args)
	case ipc.AddrCurrentSettings:
		if len(msg.Args)%2 != 0 {
			s.logger.Printf("telemetry: %s has odd argument count %d", msg.Address, len(msg.Args))
			return false
		}
		for i := 0; i < len(msg.Args); i += 2 {
			key, ok := msg.Args[i].(string)
			if !ok || key == "" {
				return false
			}
			s.Current[key] = argString(msg.Args[i+1])
		}
		return true
	case ipc.AddrMasterGain:
		v, ok := firstFloat(msg.Args)
		if !ok {
			return false
		}
		s.MasterGain = common.Clamp01(v)
		return true
	case ipc.AddrCPULoad:
		v, ok := firstFloat(msg.Args)
		if !ok {
			return false
		}
		s.CPULoad = common.Clamp01(v)
		return true
	}
	return false
}

// Drain applies at most max queued messages from inbox, or all of them when
// max is not positive. It returns how many were applied.
func (s *Settings) Drain(inbox *ipc.Inbox, max int) int {
	applied := 0
	for _, msg := range inbox.Drain(max) {
		if s.Apply(msg) {
			applied++
		}
	}
	return applied
}

// DeviceTypes returns the audio device types in sorted order.
func (s *Settings) DeviceTypes() []string {
	types := make([]string, 0, len(s.AudioDevices))
	for t := range s.AudioDevices {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (s *Settings) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gain=%.2f cpu=%.2f", s.MasterGain, s.CPULoad)
	for _, t := range s.DeviceTypes() {
		fmt.Fprintf(&b, " %s=%d", t, len(s.AudioDevices[t]))
	}
	return b.String()
}

// applyDeviceList replaces the list for the type named by args[0].
func applyDeviceList(dst map[string][]string, args []any) bool {
	if len(args) == 0 {
		return false
	}
	deviceType, ok := args[0].(string)
	if !ok || deviceType == "" {
		return false
	}
	names := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		names = append(names, argString(a))
	}
	dst[deviceType] = names
	return true
}

func firstFloat(args []any) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[0].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func argString(a any) string {
	switch v := a.(type) {
	case string:
		return v
	case float32:
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprint(a)
}
