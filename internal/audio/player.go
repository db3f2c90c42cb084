package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

type DeviceState int

const (
	DeviceRunning DeviceState = iota
	DeviceSuspended
	DeviceClosed
)

// Device is an audio output. Start must not block for the length of the clip;
// onEnded is called once the buffer has finished playing naturally.
type Device interface {
	State() DeviceState
	Resume(ctx context.Context) error
	Start(buf *Buffer, onEnded func()) error
}

type DeviceFactory func() (Device, error)

var ErrPlayerLocked = errors.New("audio output not unlocked yet")

// Player owns the single shared output device. The device is only created on
// Unlock, which callers invoke on the first user gesture.
type Player struct {
	newDevice DeviceFactory

	mu     sync.Mutex
	device Device
	ready  atomic.Bool

	playSeq  atomic.Uint64
	speaking atomic.Bool

	// OnSpeakingChange, when set, observes indicator transitions.
	OnSpeakingChange func(speaking bool)
}

func NewPlayer(factory DeviceFactory) *Player {
	return &Player{newDevice: factory}
}

// Unlock creates the output device exactly once, even when called
// concurrently. Later calls are no-ops.
func (p *Player) Unlock() error {
	if p.ready.Load() {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device != nil {
		return nil
	}
	d, err := p.newDevice()
	if err != nil {
		return fmt.Errorf("create audio device: %w", err)
	}
	p.device = d
	p.ready.Store(true)
	return nil
}

func (p *Player) Unlocked() bool {
	return p.ready.Load()
}

func (p *Player) Speaking() bool {
	return p.speaking.Load()
}

// Play decodes a base64 PCM clip and starts it on the shared device.
// Overlapping playback is allowed; the speaking indicator follows the most
// recently started clip.
func (p *Player) Play(ctx context.Context, b64 string) error {
	if !p.ready.Load() {
		return ErrPlayerLocked
	}

	buf, err := Decode(b64)
	if err != nil {
		return err
	}

	p.mu.Lock()
	d := p.device
	p.mu.Unlock()

	if d.State() == DeviceSuspended {
		if err := d.Resume(ctx); err != nil {
			return fmt.Errorf("resume audio device: %w", err)
		}
	}

	id := p.playSeq.Add(1)
	p.setSpeaking(true)

	err = d.Start(buf, func() {
		if p.playSeq.Load() == id {
			p.setSpeaking(false)
		}
	})
	if err != nil {
		if p.playSeq.Load() == id {
			p.setSpeaking(false)
		}
		return fmt.Errorf("start playback: %w", err)
	}
	return nil
}

func (p *Player) setSpeaking(v bool) {
	if p.speaking.Swap(v) != v && p.OnSpeakingChange != nil {
		p.OnSpeakingChange(v)
	}
}
