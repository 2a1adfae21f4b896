// Package observer exposes a websocket endpoint streaming live bot
// state (window contents, cursor, selected hotbar, behaviour status)
// for inspection tooling.
package observer

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"craftbot.dev/internal/inventory"
)

const Version = "0.1"

// SlotState is one populated slot in a window snapshot.
type SlotState struct {
	Index  int16 `json:"index"`
	ItemID int32 `json:"item_id"`
	Count  int8  `json:"count"`
}

type WindowState struct {
	WindowID int16       `json:"window_id"`
	Slots    []SlotState `json:"slots"`
}

// StateMsg is one snapshot frame on the observer socket.
type StateMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            uint64        `json:"tick"`
	Behaviour       string        `json:"behaviour"`
	HotbarSelected  int8          `json:"hotbar_selected"`
	Cursor          *SlotState    `json:"cursor,omitempty"`
	Windows         []WindowState `json:"windows"`
}

// StateFunc produces the current snapshot; the server calls it once
// per frame.
type StateFunc func() StateMsg

// Server pushes snapshots to every connected observer at a fixed
// cadence.
type Server struct {
	state    StateFunc
	interval time.Duration
	log      logrus.FieldLogger

	upgrader websocket.Upgrader
}

func NewServer(state StateFunc, interval time.Duration, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Server{
		state:    state,
		interval: interval,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Reads only surface disconnects; observers never send data.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					_ = conn.Close()
					return
				}
			}
		}()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for range ticker.C {
			msg := s.state()
			msg.Type = "STATE"
			msg.ProtocolVersion = Version
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				s.log.WithError(err).Debug("observer disconnected")
				return
			}
		}
	}
}

// SnapshotInventory renders the inventory manager into snapshot form
// under one lock acquisition.
func SnapshotInventory(m *inventory.Manager, msg *StateMsg) {
	m.WithLocked(func(v *inventory.View) {
		msg.HotbarSelected = v.HotbarSelectedIndex()
		if c := v.GetCursor(); !c.IsEmpty() {
			msg.Cursor = &SlotState{ItemID: c.ItemID, Count: c.Count}
		}
		for _, id := range v.WindowIDs() {
			inv := v.GetInventory(id)
			w := WindowState{WindowID: id}
			for _, idx := range inv.Indices() {
				s := inv.GetSlot(idx)
				if s.IsEmpty() {
					continue
				}
				w.Slots = append(w.Slots, SlotState{Index: idx, ItemID: s.ItemID, Count: s.Count})
			}
			msg.Windows = append(msg.Windows, w)
		}
	})
}
