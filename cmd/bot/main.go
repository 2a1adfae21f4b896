// Command bot connects to a server, mirrors its windows into the
// inventory manager, and drives a small behaviour tree over that
// state. Optional capture and observer endpoints hang off the session.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"craftbot.dev/internal/bt"
	"craftbot.dev/internal/capture"
	"craftbot.dev/internal/client"
	"craftbot.dev/internal/config"
	"craftbot.dev/internal/inventory"
	"craftbot.dev/internal/observer"
	"craftbot.dev/internal/protocol"
)

// botContext is the tick context threaded through the behaviour tree.
type botContext struct {
	inv *inventory.Manager
	log logrus.FieldLogger
}

func hasSelectedItem(c *botContext) bt.Status {
	if c.inv.GetHotbarSelected().IsEmpty() {
		return bt.Failure
	}
	return bt.Success
}

func reportSelectedItem(c *botContext) bt.Status {
	s := c.inv.GetHotbarSelected()
	if s.IsEmpty() {
		return bt.Failure
	}
	c.log.WithFields(logrus.Fields{
		"item_id": s.ItemID,
		"count":   s.Count,
	}).Info("holding item")
	return bt.Success
}

// buildTree wires the demo behaviour: report the held item when there
// is one, otherwise keep waiting for the server to fill the hotbar.
func buildTree() (*bt.Tree[*botContext], error) {
	return bt.NewBuilder[*botContext]().
		Selector().
		Sequence().
		Leaf(hasSelectedItem).
		Leaf(reportSelectedItem).
		End().
		Repeater(0).
		Inverter().
		Leaf(hasSelectedItem).
		End().
		End().
		End().
		Build()
}

func main() {
	configPath := flag.String("config", "", "path to YAML config (empty for defaults)")
	serverAddr := flag.String("server", "", "override server address host:port")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(*configPath, *serverAddr, log); err != nil && err != io.EOF && err != context.Canceled {
		log.WithError(err).Fatal("bot exited")
	}
}

func run(configPath, serverAddr string, log *logrus.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serverAddr != "" {
		cfg.Server.Address = serverAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ver := protocol.Version(cfg.Server.Protocol)
	log.WithFields(logrus.Fields{
		"server":   cfg.Server.Address,
		"protocol": int32(ver),
	}).Info("connecting")

	conn, err := net.Dial("tcp", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.Server.Address, err)
	}

	sess, err := client.NewSession(conn, ver, log)
	if err != nil {
		_ = conn.Close()
		return err
	}
	if cfg.Server.CompressionThreshold >= 0 {
		sess.SetCompressionThreshold(cfg.Server.CompressionThreshold)
	}

	inv := inventory.NewManager(log)
	sess.AddHandler(inv)

	if cfg.Capture.Enabled {
		idx, err := capture.OpenIndex(cfg.Capture.IndexDB)
		if err != nil {
			return fmt.Errorf("open capture index: %w", err)
		}
		defer idx.Close()

		rec, err := capture.NewRecorder(cfg.Capture.Dir, ver, idx)
		if err != nil {
			return fmt.Errorf("open recorder: %w", err)
		}
		defer rec.Close()
		sess.SetPacketHook(rec.Hook())
		log.WithField("session", rec.SessionID()).Info("capture enabled")
	}

	var tick atomic.Uint64
	var lastStatus atomic.Int32

	if cfg.Observer.Enabled {
		obs := observer.NewServer(func() observer.StateMsg {
			msg := observer.StateMsg{
				Tick:      tick.Load(),
				Behaviour: bt.Status(lastStatus.Load()).String(),
			}
			observer.SnapshotInventory(inv, &msg)
			return msg
		}, time.Second, log)

		mux := http.NewServeMux()
		mux.Handle("/v1/ws", obs.Handler())
		httpSrv := &http.Server{Addr: cfg.Observer.Listen, Handler: mux}
		go func() {
			log.WithField("listen", cfg.Observer.Listen).Info("observer listening")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("observer server failed")
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutCtx)
		}()
	}

	tree, err := buildTree()
	if err != nil {
		return fmt.Errorf("build behaviour tree: %w", err)
	}
	bc := &botContext{inv: inv, log: log.WithField("component", "ai")}

	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Bot.TickIntervalMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lastStatus.Store(int32(tree.Tick(bc)))
				tick.Add(1)
			}
		}
	}()

	return sess.Run(ctx)
}
