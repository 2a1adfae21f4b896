// Package capture records the packets of a session to compressed JSONL
// files and keeps a sqlite index over sessions for later replay.
package capture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"craftbot.dev/internal/client"
	"craftbot.dev/internal/protocol"
)

// Record is one captured packet. Raw is the message body without the
// opcode prefix, so a replay can push it back through the registry.
type Record struct {
	TS        time.Time      `json:"ts"`
	SessionID string         `json:"session_id"`
	Direction string         `json:"direction"`
	Protocol  int32          `json:"protocol"`
	Opcode    int32          `json:"opcode"`
	Name      string         `json:"name"`
	Size      int            `json:"size"`
	Raw       []byte         `json:"raw"`
	Dump      map[string]any `json:"dump,omitempty"`
}

// Recorder writes capture records as zstd-compressed JSONL, one file
// per hour per session.
type Recorder struct {
	baseDir   string
	sessionID string
	ver       protocol.Version
	index     *Index

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewRecorder opens a recorder for one session. index may be nil.
func NewRecorder(baseDir string, ver protocol.Version, index *Index) (*Recorder, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("capture: empty base dir")
	}
	r := &Recorder{
		baseDir:   baseDir,
		sessionID: uuid.NewString(),
		ver:       ver,
		index:     index,
	}
	if index != nil {
		index.RecordSession(r.sessionID, time.Now().UTC(), int32(ver))
	}
	return r, nil
}

func (r *Recorder) SessionID() string { return r.sessionID }

// Hook adapts the recorder to the session's packet hook.
func (r *Recorder) Hook() client.PacketHook {
	return func(dir protocol.Direction, id int32, name string, body []byte, msg protocol.Message) {
		rec := Record{
			TS:        time.Now().UTC(),
			SessionID: r.sessionID,
			Direction: dir.String(),
			Protocol:  int32(r.ver),
			Opcode:    id,
			Name:      name,
			Size:      len(body),
			Raw:       body,
			Dump:      msg.Dump(),
		}
		if err := r.write(rec); err != nil {
			// Capture is best-effort; losing a record must not stall
			// the session.
			return
		}
		if r.index != nil {
			r.index.RecordPacket(rec)
		}
	}
}

func (r *Recorder) write(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hour := rec.TS.Format("2006-01-02-15")
	if hour != r.curHour {
		if err := r.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *Recorder) rotateLocked(hour string) error {
	if err := r.closeLocked(); err != nil {
		return err
	}
	path := r.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	r.f = f
	r.enc = enc
	r.w = bufio.NewWriterSize(enc, 128*1024)
	r.curHour = hour
	return nil
}

func (r *Recorder) closeLocked() error {
	var err1 error
	if r.w != nil {
		_ = r.w.Flush()
	}
	if r.enc != nil {
		err1 = r.enc.Close()
		r.enc = nil
	}
	if r.f != nil {
		_ = r.f.Close()
		r.f = nil
	}
	r.w = nil
	return err1
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *Recorder) pathForHour(hour string) string {
	return filepath.Join(r.baseDir, fmt.Sprintf("capture-%s-%s.jsonl.zst", r.sessionID, hour))
}

// ReadFile decodes every record of one capture file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Record
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
