package animation

import "time"

// DefaultConfig returns the flash timing used on phase changes.
func DefaultConfig() Config {
	return Config{
		Flashes:     3,
		OnDuration:  180 * time.Millisecond,
		OffDuration: 120 * time.Millisecond,
	}
}
