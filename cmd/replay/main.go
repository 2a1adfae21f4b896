// Command replay inspects capture files: it lists indexed sessions,
// decodes recorded packets, and verifies that every record re-encodes
// to the bytes that were captured.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"craftbot.dev/internal/capture"
	"craftbot.dev/internal/protocol"
)

func main() {
	indexPath := flag.String("index", "", "sqlite index to list sessions from")
	verify := flag.Bool("verify", true, "re-encode each record and compare against the captured bytes")
	dump := flag.Bool("dump", false, "print the decoded field dump of each record")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *indexPath != "" {
		if err := listSessions(*indexPath); err != nil {
			log.WithError(err).Fatal("list sessions")
		}
	}
	for _, path := range flag.Args() {
		if err := replayFile(path, *verify, *dump, log); err != nil {
			log.WithError(err).WithField("file", path).Fatal("replay failed")
		}
	}
	if *indexPath == "" && flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: replay [-index captures.db] [-dump] [capture.jsonl.zst ...]")
		os.Exit(2)
	}
}

func listSessions(path string) error {
	idx, err := capture.OpenIndex(path)
	if err != nil {
		return err
	}
	defer idx.Close()

	sessions, err := idx.Sessions()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Printf("%s  started=%s  protocol=%d  packets=%d\n", s.ID, s.StartedAt, s.Protocol, s.Packets)
	}
	return nil
}

func replayFile(path string, verify, dump bool, log *logrus.Logger) error {
	records, err := capture.ReadFile(path)
	if err != nil {
		return err
	}

	var decoded, skipped int
	for i, rec := range records {
		ver := protocol.Version(rec.Protocol)
		dir := protocol.Serverbound
		if rec.Direction == "clientbound" {
			dir = protocol.Clientbound
		}

		msg, err := protocol.Decode(ver, dir, rec.Opcode, rec.Raw)
		if err != nil {
			// Records of opcodes this build no longer models are not an
			// error; the raw bytes are still in the file.
			log.WithError(err).WithFields(logrus.Fields{
				"record": i,
				"opcode": fmt.Sprintf("0x%02X", rec.Opcode),
			}).Warn("record skipped")
			skipped++
			continue
		}
		decoded++

		if verify {
			body, err := protocol.Encode(ver, msg)
			if err != nil {
				return fmt.Errorf("record %d: re-encode %s: %w", i, rec.Name, err)
			}
			if !bytes.Equal(body, rec.Raw) {
				return fmt.Errorf("record %d: %s re-encoded to % X, captured % X", i, rec.Name, body, rec.Raw)
			}
		}
		if dump {
			b, _ := json.Marshal(msg.Dump())
			fmt.Printf("%s %s %s %s\n", rec.TS.Format("15:04:05.000"), rec.Direction, rec.Name, b)
		}
	}

	log.WithFields(logrus.Fields{
		"file":    path,
		"records": len(records),
		"decoded": decoded,
		"skipped": skipped,
	}).Info("replay complete")
	return nil
}
