package audio

import (
	"bytes"
	"context"
	"log"
	"os/exec"
	"strings"
	"sync"
)

var execCommandHook = exec.Command

// CommandDevice plays clips by piping raw PCM into an external player, e.g.
// "aplay -q -f S16_LE -r 24000 -c 1". A clip ends when the process exits.
type CommandDevice struct {
	name string
	args []string

	mu    sync.Mutex
	state DeviceState
}

func NewCommandDevice(command string) *CommandDevice {
	fields := strings.Fields(command)
	d := &CommandDevice{state: DeviceRunning}
	if len(fields) > 0 {
		d.name = fields[0]
		d.args = fields[1:]
	}
	return d
}

func (d *CommandDevice) State() DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *CommandDevice) Resume(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DeviceSuspended {
		d.state = DeviceRunning
	}
	return nil
}

func (d *CommandDevice) Suspend() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DeviceRunning {
		d.state = DeviceSuspended
	}
}

func (d *CommandDevice) Start(buf *Buffer, onEnded func()) error {
	if d.name == "" {
		return exec.ErrNotFound
	}

	cmd := execCommandHook(d.name, d.args...)
	cmd.Stdin = bytes.NewReader(PCMFromSamples(buf.Samples))
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("audio player %s exited: %v", d.name, err)
		}
		if onEnded != nil {
			onEnded()
		}
	}()
	return nil
}
