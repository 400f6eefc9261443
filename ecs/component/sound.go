package component

// SoundEmitter marks an entity as owning one remote audio voice. The optional
// flags are pointers so an unset flag can be left to the audio engine's own
// default.
type SoundEmitter struct {
	VoiceType   string
	Resource    string
	Amplitude   float64
	PitchOnGrid *bool
	Looping     *bool
	Volume      *float64
}

var SoundEmitterComponent = NewComponent[SoundEmitter]()

// Impact records the strongest first-contact impulse an emitter received
// during the last step. The voice sync system consumes and clears it.
type Impact struct {
	Impulse float64
}

var ImpactComponent = NewComponent[Impact]()
