package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds the response padding applied to credential failures
type TimingConfig struct {
	BaseDelay      time.Duration
	RandomDelay    time.Duration
	DelayOnSuccess bool
}

// TimingDelay pads credential checks so that "unknown user" and "wrong
// password" take about the same time
type TimingDelay struct {
	config TimingConfig
	sleep  func(time.Duration)
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config, sleep: time.Sleep}
}

// cryptoRandIntn returns a secure random number in [0, n)
func cryptoRandIntn(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b[:]) % uint64(n))
}

func (td *TimingDelay) target() time.Duration {
	return td.config.BaseDelay + time.Duration(cryptoRandIntn(int64(td.config.RandomDelay)))
}

// WaitFrom sleeps until at least base+random has elapsed since start
func (td *TimingDelay) WaitFrom(start time.Time, success bool) {
	if td == nil || (success && !td.config.DelayOnSuccess) {
		return
	}
	if remaining := td.target() - time.Since(start); remaining > 0 {
		td.sleep(remaining)
	}
}
