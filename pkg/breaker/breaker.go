package breaker

import (
	"errors"
	"sync"
	"time"
)

type state uint8

const (
	closed state = iota + 1
	open
	halfOpen
)

var ErrOpen = errors.New("circuit breaker is open")

// Breaker shields a flaky collaborator. It trips open once the failure
// share over the tracked tail of calls reaches the threshold, rejects
// calls while open, and probes in half-open after the cooldown.
type Breaker struct {
	mu sync.Mutex

	state           state
	lastAttemptedAt time.Time

	// tail of call outcomes, true = failed
	buffer []bool
	pos    int

	cooldown  time.Duration
	threshold float64
	// successful half-open calls required to close again
	recovery     int
	successCount int
}

func New(recordLength int, cooldown time.Duration, threshold float64, recovery int) *Breaker {
	return &Breaker{
		state:     closed,
		buffer:    make([]bool, recordLength),
		cooldown:  cooldown,
		threshold: threshold,
		recovery:  recovery,
	}
}

func (b *Breaker) Do(call func() error) error {
	b.mu.Lock()
	if b.state == open {
		if time.Since(b.lastAttemptedAt) <= b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = halfOpen
		b.successCount = 0
	}
	b.mu.Unlock()

	err := call()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer[b.pos] = err != nil
	b.pos = (b.pos + 1) % len(b.buffer)

	if b.state == halfOpen {
		if err != nil {
			b.trip()
		} else {
			b.successCount++
			if b.successCount > b.recovery {
				b.reset()
			}
		}
		return err
	}

	fails := 0
	for _, failed := range b.buffer {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(b.buffer)) >= b.threshold {
		b.trip()
	}
	return err
}

func (b *Breaker) trip() {
	b.state = open
	b.successCount = 0
	b.lastAttemptedAt = time.Now()
}

func (b *Breaker) reset() {
	for i := range b.buffer {
		b.buffer[i] = false
	}
	b.pos = 0
	b.successCount = 0
	b.state = closed
}
