package protocol

import "fmt"

// Clientbound window and slot messages, the subset the inventory
// manager consumes. Opcodes move between protocol versions; the maps
// below are the per-version tables the registry consults.

var (
	setSlotIDs = map[Version]int32{
		Version1_18_2: 0x16,
		Version1_19_1: 0x13,
	}
	windowItemsIDs = map[Version]int32{
		Version1_18_2: 0x14,
		Version1_19_1: 0x11,
	}
	openWindowIDs = map[Version]int32{
		Version1_18_2: 0x2E,
		Version1_19_1: 0x2B,
	}
	heldItemChangeIDs = map[Version]int32{
		Version1_18_2: 0x48,
		Version1_19_1: 0x4A,
	}
)

// ClientboundSetSlot updates one slot. Window -1 with slot -1
// addresses the cursor stack; window -2 addresses the player
// inventory directly.
type ClientboundSetSlot struct {
	WindowID int16
	Slot     int16
	SlotData Slot
}

func (p *ClientboundSetSlot) Name() string { return "SetSlot" }

func (p *ClientboundSetSlot) ID(v Version) (int32, bool) {
	id, ok := setSlotIDs[v]
	return id, ok
}

func (p *ClientboundSetSlot) Read(r *Reader) error {
	var err error
	if p.WindowID, err = r.ReadI16(); err != nil {
		return fmt.Errorf("window_id: %w", err)
	}
	if p.Slot, err = r.ReadI16(); err != nil {
		return fmt.Errorf("slot: %w", err)
	}
	if err := p.SlotData.Read(r); err != nil {
		return fmt.Errorf("slot_data: %w", err)
	}
	return nil
}

func (p *ClientboundSetSlot) Write(w *Writer) error {
	w.WriteI16(p.WindowID)
	w.WriteI16(p.Slot)
	return p.SlotData.Write(w)
}

func (p *ClientboundSetSlot) Dump() map[string]any {
	return map[string]any{
		"window_id": p.WindowID,
		"slot":      p.Slot,
		"slot_data": p.SlotData.Dump(),
	}
}

// ClientboundWindowItems replaces the whole content of a window.
type ClientboundWindowItems struct {
	WindowID int16
	SlotData []Slot
}

func (p *ClientboundWindowItems) Name() string { return "WindowItems" }

func (p *ClientboundWindowItems) ID(v Version) (int32, bool) {
	id, ok := windowItemsIDs[v]
	return id, ok
}

func (p *ClientboundWindowItems) Read(r *Reader) error {
	var err error
	if p.WindowID, err = r.ReadI16(); err != nil {
		return fmt.Errorf("window_id: %w", err)
	}
	count, err := r.ReadI32()
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative slot count %d", ErrMalformed, count)
	}
	// One slot is at least one byte on the wire, so the budget bounds
	// the count before any allocation.
	if int(count) > r.Remaining() {
		return fmt.Errorf("%w: %d slots, %d bytes remaining", ErrUnderflow, count, r.Remaining())
	}
	p.SlotData = make([]Slot, count)
	for i := range p.SlotData {
		if err := p.SlotData[i].Read(r); err != nil {
			return fmt.Errorf("slot_data[%d]: %w", i, err)
		}
	}
	return nil
}

func (p *ClientboundWindowItems) Write(w *Writer) error {
	w.WriteI16(p.WindowID)
	w.WriteI32(int32(len(p.SlotData)))
	for i := range p.SlotData {
		if err := p.SlotData[i].Write(w); err != nil {
			return err
		}
	}
	return nil
}

func (p *ClientboundWindowItems) Dump() map[string]any {
	return map[string]any{
		"window_id": p.WindowID,
		"slot_data": fmt.Sprintf("%d slots", len(p.SlotData)),
	}
}

// ClientboundOpenWindow announces a freshly opened window. The id is a
// 32-bit field on the wire but window identity is 16-bit everywhere
// else, so consumers coerce it.
type ClientboundOpenWindow struct {
	WindowID int32
}

func (p *ClientboundOpenWindow) Name() string { return "OpenWindow" }

func (p *ClientboundOpenWindow) ID(v Version) (int32, bool) {
	id, ok := openWindowIDs[v]
	return id, ok
}

func (p *ClientboundOpenWindow) Read(r *Reader) error {
	var err error
	if p.WindowID, err = r.ReadI32(); err != nil {
		return fmt.Errorf("window_id: %w", err)
	}
	return nil
}

func (p *ClientboundOpenWindow) Write(w *Writer) error {
	w.WriteI32(p.WindowID)
	return nil
}

func (p *ClientboundOpenWindow) Dump() map[string]any {
	return map[string]any{"window_id": p.WindowID}
}

// ClientboundHeldItemChange selects the active hotbar slot, 0..8.
type ClientboundHeldItemChange struct {
	Slot int8
}

func (p *ClientboundHeldItemChange) Name() string { return "HeldItemChange" }

func (p *ClientboundHeldItemChange) ID(v Version) (int32, bool) {
	id, ok := heldItemChangeIDs[v]
	return id, ok
}

func (p *ClientboundHeldItemChange) Read(r *Reader) error {
	var err error
	if p.Slot, err = r.ReadI8(); err != nil {
		return fmt.Errorf("slot: %w", err)
	}
	return nil
}

func (p *ClientboundHeldItemChange) Write(w *Writer) error {
	w.WriteI8(p.Slot)
	return nil
}

func (p *ClientboundHeldItemChange) Dump() map[string]any {
	return map[string]any{"slot": p.Slot}
}
