package ipc

// Stub is the Sender used when no transport could be opened. Every command
// is discarded so the simulation keeps running without audio sync.
type Stub struct{}

func (Stub) CreateVoice(int32, string, string)      {}
func (Stub) CreateVoiceExtended(VoiceSpec)          {}
func (Stub) DestroyVoice(int32)                     {}
func (Stub) UpdateParameter(int32, string, float64) {}
func (Stub) UpdateVoicePositions([]VoicePosition)   {}
func (Stub) SetListenerPosition(float64, float64)   {}
func (Stub) SetListenerConfig(float64, float64)     {}
func (Stub) StopAll()                               {}
