package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
)

const (
	// DefaultSampleRate is the output sample rate in Hz.
	DefaultSampleRate = 44100
	// Channels is the number of interleaved output channels.
	Channels = 2

	bytesPerSample = 2
	frameBytes     = Channels * bytesPerSample
	// decayFloor is the fraction of the initial gain a tone decays to by its end.
	decayFloor = 0.0001
)

// Synth mixes scheduled tones into signed 16-bit little-endian stereo PCM.
// The number of frames it has rendered is the audio clock.
type Synth struct {
	mu         sync.Mutex
	sampleRate int
	maxFrames  int
	frame      int64
	sequence   uint64
	pending    *redblacktree.Tree // voiceKey -> *voice, ordered by start frame
	active     []*voice
}

type voice struct {
	start     int64
	end       int64
	frequency float64
	waveform  Waveform
	gain      float64
}

// voiceKey orders pending voices by start frame, then by arrival.
type voiceKey struct {
	start    int64
	sequence uint64
}

func compareVoiceKeys(a, b any) int {
	ka, kb := a.(voiceKey), b.(voiceKey)
	switch {
	case ka.start < kb.start:
		return -1
	case ka.start > kb.start:
		return 1
	case ka.sequence < kb.sequence:
		return -1
	case ka.sequence > kb.sequence:
		return 1
	default:
		return 0
	}
}

// NewSynth creates a mixer at sampleRate. Each Read renders at most 10ms so
// the clock advances in small steps.
func NewSynth(sampleRate int) *Synth {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	maxFrames := sampleRate / 100
	if maxFrames < 1 {
		maxFrames = 1
	}
	return &Synth{
		sampleRate: sampleRate,
		maxFrames:  maxFrames,
		pending:    redblacktree.NewWith(compareVoiceKeys),
	}
}

// SampleRate returns the output sample rate.
func (synth *Synth) SampleRate() int {
	return synth.sampleRate
}

// Now returns the audio clock in seconds.
func (synth *Synth) Now() float64 {
	synth.mu.Lock()
	defer synth.mu.Unlock()
	return float64(synth.frame) / float64(synth.sampleRate)
}

// Pending returns the number of tones scheduled but not yet sounding.
func (synth *Synth) Pending() int {
	synth.mu.Lock()
	defer synth.mu.Unlock()
	return synth.pending.Size()
}

// EmitTone schedules tone. Tones in the past start at the next rendered frame.
func (synth *Synth) EmitTone(tone Tone) {
	if tone.Frequency <= 0 || tone.Duration <= 0 {
		return
	}
	gain := float64(clampVolume(tone.Volume)) / 100
	if gain <= 0 {
		return
	}

	rate := float64(synth.sampleRate)
	length := int64(math.Round(tone.Duration * rate))
	if length < 1 {
		length = 1
	}

	synth.mu.Lock()
	defer synth.mu.Unlock()

	start := int64(math.Round(tone.At * rate))
	if start < synth.frame {
		start = synth.frame
	}
	synth.sequence++
	synth.pending.Put(voiceKey{start: start, sequence: synth.sequence}, &voice{
		start:     start,
		end:       start + length,
		frequency: tone.Frequency,
		waveform:  tone.Waveform,
		gain:      gain,
	})
}

// Read renders the next block of frames into buffer.
func (synth *Synth) Read(buffer []byte) (int, error) {
	frames := len(buffer) / frameBytes
	if frames > synth.maxFrames {
		frames = synth.maxFrames
	}
	if frames == 0 {
		return 0, nil
	}

	synth.mu.Lock()
	defer synth.mu.Unlock()

	rate := float64(synth.sampleRate)
	for i := 0; i < frames; i++ {
		current := synth.frame + int64(i)
		synth.activateLocked(current)

		mixed := 0.0
		kept := synth.active[:0]
		for _, v := range synth.active {
			if current >= v.end {
				continue
			}
			mixed += v.sample(current, rate)
			kept = append(kept, v)
		}
		for j := len(kept); j < len(synth.active); j++ {
			synth.active[j] = nil
		}
		synth.active = kept

		value := uint16(int16(math.Max(-1, math.Min(1, mixed)) * math.MaxInt16))
		offset := i * frameBytes
		for channel := 0; channel < Channels; channel++ {
			binary.LittleEndian.PutUint16(buffer[offset+channel*bytesPerSample:], value)
		}
	}
	synth.frame += int64(frames)
	return frames * frameBytes, nil
}

func (synth *Synth) activateLocked(current int64) {
	for node := synth.pending.Left(); node != nil; node = synth.pending.Left() {
		key := node.Key.(voiceKey)
		if key.start > current {
			return
		}
		synth.pending.Remove(key)
		synth.active = append(synth.active, node.Value.(*voice))
	}
}

func (v *voice) sample(current int64, rate float64) float64 {
	elapsed := float64(current-v.start) / rate
	length := float64(v.end-v.start) / rate
	envelope := v.gain * math.Pow(decayFloor, elapsed/length)
	return envelope * oscillate(v.waveform, v.frequency*elapsed)
}

// oscillate evaluates a unit-amplitude waveform at the given number of cycles.
func oscillate(waveform Waveform, cycles float64) float64 {
	position := cycles - math.Floor(cycles)
	switch waveform {
	case Square:
		if position < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		return 1 - 4*math.Abs(position-0.5)
	case Sawtooth:
		return 2*position - 1
	default:
		return math.Sin(2 * math.Pi * position)
	}
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
