package inventory

import (
	"sync"

	"github.com/sirupsen/logrus"

	"craftbot.dev/internal/protocol"
)

// Manager tracks every open window plus the cursor stack and the
// selected hotbar index. One mutex serialises all access; message
// handlers take it themselves, and WithLocked hands out a view for
// callers that need a consistent multi-step read-modify.
type Manager struct {
	mu sync.Mutex
	v  View

	log logrus.FieldLogger
}

// View is the unlocked state, only reachable through a Manager.
type View struct {
	windows        map[int16]*Inventory
	cursor         protocol.Slot
	hotbarSelected int8
}

func NewManager(log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		v:   View{windows: make(map[int16]*Inventory)},
		log: log,
	}
}

// WithLocked runs fn with the manager locked. The view must not be
// retained past the call.
func (m *Manager) WithLocked(fn func(v *View)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.v)
}

// SetSlot stores a slot in the identified window, creating the window
// on first use.
func (v *View) SetSlot(windowID, index int16, s protocol.Slot) {
	inv, ok := v.windows[windowID]
	if !ok {
		inv = NewInventory()
		v.windows[windowID] = inv
	}
	inv.SetSlot(index, s)
}

// GetInventory returns the live inventory for a window, or nil. Hold
// the lock (WithLocked) while reading it if other goroutines may be
// dispatching messages.
func (v *View) GetInventory(windowID int16) *Inventory {
	return v.windows[windowID]
}

func (v *View) GetPlayerInventory() *Inventory {
	return v.windows[PlayerInventoryIndex]
}

func (v *View) AddInventory(windowID int16) {
	v.windows[windowID] = NewInventory()
}

func (v *View) EraseInventory(windowID int16) {
	delete(v.windows, windowID)
}

func (v *View) GetCursor() protocol.Slot     { return v.cursor }
func (v *View) SetCursor(s protocol.Slot)    { v.cursor = s }
func (v *View) SetHotbarSelected(index int8) { v.hotbarSelected = index }
func (v *View) HotbarSelectedIndex() int8    { return v.hotbarSelected }

// GetHotbarSelected returns the slot under the selected hotbar index,
// or the empty slot when the player inventory is not known yet.
func (v *View) GetHotbarSelected() protocol.Slot {
	inv := v.GetPlayerInventory()
	if inv == nil {
		return protocol.Slot{}
	}
	return inv.GetSlot(HotbarStart + int16(v.hotbarSelected))
}

// WindowIDs returns the currently open window ids, unordered.
func (v *View) WindowIDs() []int16 {
	out := make([]int16, 0, len(v.windows))
	for id := range v.windows {
		out = append(out, id)
	}
	return out
}

// Locked convenience wrappers over the view.

func (m *Manager) SetSlot(windowID, index int16, s protocol.Slot) {
	m.WithLocked(func(v *View) { v.SetSlot(windowID, index, s) })
}

func (m *Manager) GetInventory(windowID int16) *Inventory {
	var inv *Inventory
	m.WithLocked(func(v *View) { inv = v.GetInventory(windowID) })
	return inv
}

func (m *Manager) GetPlayerInventory() *Inventory {
	return m.GetInventory(PlayerInventoryIndex)
}

func (m *Manager) AddInventory(windowID int16) {
	m.WithLocked(func(v *View) { v.AddInventory(windowID) })
}

func (m *Manager) EraseInventory(windowID int16) {
	m.WithLocked(func(v *View) { v.EraseInventory(windowID) })
}

func (m *Manager) SetHotbarSelected(index int8) {
	m.WithLocked(func(v *View) { v.SetHotbarSelected(index) })
}

func (m *Manager) GetHotbarSelected() protocol.Slot {
	var s protocol.Slot
	m.WithLocked(func(v *View) { s = v.GetHotbarSelected() })
	return s
}

func (m *Manager) GetCursor() protocol.Slot {
	var s protocol.Slot
	m.WithLocked(func(v *View) { s = v.GetCursor() })
	return s
}

func (m *Manager) SetCursor(s protocol.Slot) {
	m.WithLocked(func(v *View) { v.SetCursor(s) })
}

// Message handlers. Diagnostics never kill the session: an unroutable
// message is logged and dropped.

func (m *Manager) HandleSetSlot(msg *protocol.ClientboundSetSlot) {
	m.WithLocked(func(v *View) {
		switch {
		case msg.WindowID == cursorWindow && msg.Slot == -1:
			v.SetCursor(msg.SlotData)
		case msg.WindowID == playerRedirectWindow:
			v.SetSlot(PlayerInventoryIndex, msg.Slot, msg.SlotData)
		case msg.WindowID >= 0:
			v.SetSlot(msg.WindowID, msg.Slot, msg.SlotData)
		default:
			m.log.WithFields(logrus.Fields{
				"window_id": msg.WindowID,
				"slot":      msg.Slot,
			}).Warn("SetSlot for unknown window id, ignored")
		}
	})
}

func (m *Manager) HandleWindowItems(msg *protocol.ClientboundWindowItems) {
	m.WithLocked(func(v *View) {
		for i, s := range msg.SlotData {
			v.SetSlot(msg.WindowID, int16(i), s)
		}
	})
}

func (m *Manager) HandleOpenWindow(msg *protocol.ClientboundOpenWindow) {
	m.WithLocked(func(v *View) {
		v.AddInventory(int16(msg.WindowID))
	})
}

func (m *Manager) HandleHeldItemChange(msg *protocol.ClientboundHeldItemChange) {
	m.WithLocked(func(v *View) {
		v.SetHotbarSelected(msg.Slot)
	})
}

// Handle routes any decoded message to its typed handler. It reports
// whether the message was one the inventory manager consumes.
func (m *Manager) Handle(msg protocol.Message) bool {
	switch msg := msg.(type) {
	case *protocol.ClientboundSetSlot:
		m.HandleSetSlot(msg)
	case *protocol.ClientboundWindowItems:
		m.HandleWindowItems(msg)
	case *protocol.ClientboundOpenWindow:
		m.HandleOpenWindow(msg)
	case *protocol.ClientboundHeldItemChange:
		m.HandleHeldItemChange(msg)
	default:
		return false
	}
	return true
}
