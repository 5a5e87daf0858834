package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Device plays a Synth through the system audio output.
type Device struct {
	context *oto.Context
	player  *oto.Player
	synth   *Synth
}

// Open starts playback of a new Synth on the default output device.
func Open(sampleRate int) (*Device, error) {
	synth := NewSynth(sampleRate)

	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   synth.SampleRate(),
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   40 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	<-ready

	player := context.NewPlayer(synth)
	player.Play()

	return &Device{
		context: context,
		player:  player,
		synth:   synth,
	}, nil
}

// Now returns the audio clock of the synth being played.
func (device *Device) Now() float64 {
	return device.synth.Now()
}

// EmitTone schedules tone on the synth.
func (device *Device) EmitTone(tone Tone) {
	device.synth.EmitTone(tone)
}

// Close stops playback.
func (device *Device) Close() error {
	if err := device.player.Close(); err != nil {
		return fmt.Errorf("close audio player: %w", err)
	}
	return nil
}
