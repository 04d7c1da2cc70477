// Copyright 2025 Certen Protocol
//
// File-backed persistence for movement chains: the collaborator half of
// spec.md §4.7/§5's append-only log, layered on top of the pure Chain
// type in chain.go. Appends are single os.File.Write calls under
// O_APPEND, giving line-granularity atomicity under the single-writer
// model spec.md §5 requires; concurrent callers must still serialize
// per label with their own advisory lock.
package chain

import (
	"bufio"
	"fmt"
	"os"

	"github.com/arkin0x/cyberspace-cli/pkg/event"
)

// AppendToFile appends e's canonical line encoding to the chain log at
// path, creating the file if it does not exist.
func AppendToFile(path string, e event.Event) error {
	line, err := event.MarshalLine(e)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("chain: open chain log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("chain: append to chain log: %w", err)
	}
	return nil
}

// LoadFromFile reads every event from the chain log at path, in append
// order.
func LoadFromFile(path string) ([]event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chain: open chain log: %w", err)
	}
	defer f.Close()

	var events []event.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		e, err := event.UnmarshalLine(line)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("chain: scan chain log: %w", err)
	}
	return events, nil
}

// LoadChainFromFile reads and reconstructs a validated Chain from the
// log at path.
func LoadChainFromFile(label, path string) (*Chain, error) {
	events, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return Load(label, events)
}
