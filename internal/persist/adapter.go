// Package persist saves and restores the task collection in one named slot
// of a key-value byte store. Persistence is best effort: read and write
// failures are logged and never reach the caller.
package persist

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/store"
)

// DefaultSlot is the slot name used when none is configured.
const DefaultSlot = "todos-v1"

// Adapter binds a KV store and a slot name.
type Adapter struct {
	kv     store.KV
	slot   string
	logger *log.Logger
}

// New returns an adapter for slot in kv. An empty slot means DefaultSlot;
// a nil logger means log.Default().
func New(kv store.KV, slot string, logger *log.Logger) *Adapter {
	if slot == "" {
		slot = DefaultSlot
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{kv: kv, slot: slot, logger: logger}
}

// Slot returns the slot name the adapter reads and writes.
func (a *Adapter) Slot() string { return a.slot }

// Load returns the stored collection, or an empty one when the slot is
// absent, unreadable or fails validation.
func (a *Adapter) Load() model.Collection {
	data, err := a.kv.Get(a.slot)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.logger.Warn("load failed, starting empty", "slot", a.slot, "err", err)
		}
		return model.Collection{}
	}
	c, dropped, err := decode(data)
	if err != nil {
		a.logger.Warn("stored tasks rejected, starting empty", "slot", a.slot, "err", err)
		return model.Collection{}
	}
	if dropped > 0 {
		a.logger.Warn("dropped malformed tasks", "slot", a.slot, "dropped", dropped)
	}
	a.logger.Debug("loaded", "slot", a.slot, "items", len(c))
	return c
}

// Save overwrites the slot with c. Failures are logged and dropped.
func (a *Adapter) Save(c model.Collection) {
	data, err := Encode(c)
	if err != nil {
		a.logger.Warn("encode failed, not saved", "slot", a.slot, "err", err)
		return
	}
	if err := a.kv.Put(a.slot, data); err != nil {
		a.logger.Warn("save failed", "slot", a.slot, "err", err)
		return
	}
	a.logger.Debug("saved", "slot", a.slot, "items", len(c), "bytes", len(data))
}
