package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"craftbot.dev/internal/protocol"
)

// Handler consumes decoded clientbound messages. It reports whether it
// consumed the message so dispatch can try the next handler.
type Handler interface {
	Handle(msg protocol.Message) bool
}

// PacketHook observes every whole packet that crosses the session, for
// capture. body is the message body without the opcode prefix.
type PacketHook func(dir protocol.Direction, id int32, name string, body []byte, msg protocol.Message)

// Session owns one server connection: it splits frames, decodes them
// through the registry for the negotiated protocol version, and routes
// them to the registered handlers. Codec errors discard the frame and
// surface in the log; handler diagnostics never kill the session.
type Session struct {
	conn   io.ReadWriteCloser
	br     *bufio.Reader
	framer Framer
	ver    protocol.Version

	writeMu  sync.Mutex
	handlers []Handler
	hook     PacketHook
	log      logrus.FieldLogger
}

func NewSession(conn io.ReadWriteCloser, ver protocol.Version, log logrus.FieldLogger) (*Session, error) {
	if !ver.Supported() {
		return nil, fmt.Errorf("%w: %d", protocol.ErrUnknownVersion, ver)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		conn:   conn,
		br:     bufio.NewReaderSize(conn, 64*1024),
		framer: Framer{Threshold: -1},
		ver:    ver,
		log:    log.WithField("protocol", int32(ver)),
	}, nil
}

func (s *Session) Version() protocol.Version { return s.ver }

// SetCompressionThreshold switches the frame shape, as the server's
// login sequence dictates.
func (s *Session) SetCompressionThreshold(threshold int) {
	s.framer.Threshold = threshold
}

func (s *Session) AddHandler(h Handler) {
	s.handlers = append(s.handlers, h)
}

// SetPacketHook installs the capture hook. Call before Run.
func (s *Session) SetPacketHook(hook PacketHook) {
	s.hook = hook
}

// Send encodes and frames a serverbound message.
func (s *Session) Send(msg protocol.Message) error {
	id, ok := msg.ID(s.ver)
	if !ok {
		return fmt.Errorf("%w: %s has no opcode for v%d", protocol.ErrUnknownVersion, msg.Name(), s.ver)
	}
	body, err := protocol.Encode(s.ver, msg)
	if err != nil {
		return err
	}
	payload := appendVarInt(nil, id)
	payload = append(payload, body...)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.framer.WriteFrame(s.conn, payload); err != nil {
		return fmt.Errorf("write %s: %w", msg.Name(), err)
	}
	if s.hook != nil {
		s.hook(protocol.Serverbound, id, msg.Name(), body, msg)
	}
	return nil
}

// Run reads and dispatches frames until the context is cancelled or
// the connection fails. Cancelling closes the connection to unblock
// the read.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-done:
		}
	}()

	for {
		payload, err := s.framer.ReadFrame(s.br)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("read frame: %w", err)
		}
		s.dispatch(payload)
	}
}

func (s *Session) dispatch(payload []byte) {
	r := protocol.NewReader(payload, s.ver)
	id, err := r.ReadVarInt()
	if err != nil {
		s.log.WithError(err).Warn("frame without opcode, dropped")
		return
	}
	body := payload[len(payload)-r.Remaining():]

	msg, err := protocol.Decode(s.ver, protocol.Clientbound, id, body)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownOpcode) {
			// Not a message this client models; normal traffic.
			s.log.WithField("opcode", fmt.Sprintf("0x%02X", id)).Debug("unhandled opcode")
			return
		}
		// A partial read leaves the message indeterminate: drop it whole.
		s.log.WithError(err).WithField("opcode", fmt.Sprintf("0x%02X", id)).Warn("malformed message dropped")
		return
	}

	if s.hook != nil {
		s.hook(protocol.Clientbound, id, msg.Name(), body, msg)
	}
	for _, h := range s.handlers {
		if h.Handle(msg) {
			return
		}
	}
	s.log.WithField("message", msg.Name()).Debug("no handler consumed message")
}
