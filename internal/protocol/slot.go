package protocol

import "fmt"

// Slot is one item-stack cell. The zero value is the empty slot;
// equality is plain value equality. Wire layout: present bool, then
// VarInt item id and signed byte count when present. NBT payloads are
// not carried at this layer.
type Slot struct {
	Present bool
	ItemID  int32
	Count   int8
}

func (s Slot) IsEmpty() bool { return s == Slot{} }

func (s *Slot) Read(r *Reader) error {
	var err error
	if s.Present, err = r.ReadBool(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	if !s.Present {
		*s = Slot{}
		return nil
	}
	if s.ItemID, err = r.ReadVarInt(); err != nil {
		return fmt.Errorf("item_id: %w", err)
	}
	if s.Count, err = r.ReadI8(); err != nil {
		return fmt.Errorf("count: %w", err)
	}
	return nil
}

func (s *Slot) Write(w *Writer) error {
	w.WriteBool(s.Present)
	if !s.Present {
		return nil
	}
	w.WriteVarInt(s.ItemID)
	w.WriteI8(s.Count)
	return nil
}

func (s *Slot) Dump() map[string]any {
	if !s.Present {
		return map[string]any{"present": false}
	}
	return map[string]any{
		"present": true,
		"item_id": s.ItemID,
		"count":   s.Count,
	}
}

func (s Slot) String() string {
	if s.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("item=%d x%d", s.ItemID, s.Count)
}
