// Package inventory mirrors the server-authoritative window state on
// the client: one inventory per open window, the free-floating cursor
// stack, and the selected hotbar index.
package inventory

import (
	"sort"

	"craftbot.dev/internal/protocol"
)

const (
	// PlayerInventoryIndex is the window id of the long-lived player
	// inventory.
	PlayerInventoryIndex int16 = 0

	// HotbarStart is the first of the nine hotbar slots within the
	// player inventory.
	HotbarStart int16 = 36
	HotbarSize  int16 = 9
)

// Window id sentinels used by SetSlot routing.
const (
	cursorWindow         int16 = -1
	playerRedirectWindow int16 = -2
)

// Inventory is a sparse mapping from slot index to slot. Reading an
// unset index yields the empty slot.
type Inventory struct {
	slots map[int16]protocol.Slot
}

func NewInventory() *Inventory {
	return &Inventory{slots: make(map[int16]protocol.Slot)}
}

func (inv *Inventory) GetSlot(index int16) protocol.Slot {
	return inv.slots[index]
}

func (inv *Inventory) SetSlot(index int16, s protocol.Slot) {
	inv.slots[index] = s
}

// Indices returns the populated slot indices in ascending order.
func (inv *Inventory) Indices() []int16 {
	out := make([]int16, 0, len(inv.slots))
	for i := range inv.slots {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Snapshot copies the populated slots.
func (inv *Inventory) Snapshot() map[int16]protocol.Slot {
	out := make(map[int16]protocol.Slot, len(inv.slots))
	for i, s := range inv.slots {
		out[i] = s
	}
	return out
}
