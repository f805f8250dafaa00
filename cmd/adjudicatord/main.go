package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/perun-network/icp-adjudicator-go/adjudicator"
	"github.com/perun-network/icp-adjudicator-go/apiserver"
	"github.com/perun-network/icp-adjudicator-go/chantime"
	"github.com/perun-network/icp-adjudicator-go/chantypes"
	"github.com/perun-network/icp-adjudicator-go/eventlog"
	"github.com/perun-network/icp-adjudicator-go/holdings"
	"github.com/perun-network/icp-adjudicator-go/receiver"
	"github.com/perun-network/icp-adjudicator-go/registry"
	"github.com/perun-network/icp-adjudicator-go/storage"

	"golang.org/x/time/rate"
)

// adjudicatordMain is the true entry point; kept separate from main()
// so deferred cleanup always runs, matching lnd.go's lndMain split.
func adjudicatordMain() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogRotator(filepath.Join(cfg.LogDir, "adjudicatord.log")); err != nil {
		return err
	}
	setLogLevels(cfg.LogLevel)
	defer logRotator.Close()

	adjLog.Infof("storage backend: %s, data dir: %s", cfg.StorageBackend, cfg.DataDir)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open storage backend: %w", err)
	}
	defer store.Close()

	clock := chantime.NewDefaultClock()

	ledger := unconfiguredLedger{}
	rcv := receiver.New(
		chantypes.NewL1Account(nil),
		ledger,
		store,
		receiver.WithRateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	)

	core := adjudicator.New(adjudicator.Config{
		Holdings:   holdings.New(store),
		Registry:   registry.New(store),
		Receiver:   rcv,
		Events:     eventlog.NewInMemory(),
		Clock:      clock,
		Transferer: ledger,
	})

	srv, err := apiserver.New(core, clock)
	if err != nil {
		return fmt.Errorf("start api server: %w", err)
	}

	token, err := srv.AdminToken(time.Duration(cfg.AdminTokenTTLSeconds) * time.Second)
	if err != nil {
		return fmt.Errorf("mint admin token: %w", err)
	}
	adjLog.Infof("admin bearer token (expires in %ds): %s", cfg.AdminTokenTTLSeconds, token)

	adjLog.Infof("listening on %s", cfg.ListenAddr)
	return http.ListenAndServe(cfg.ListenAddr, srv)
}

func openStore(cfg *config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "bbolt":
		return storage.OpenBoltStore(cfg.DataDir)
	case "sqlite":
		return storage.OpenSQLStore(filepath.Join(cfg.DataDir, "adjudicator.sqlite"))
	default:
		return storage.NewMemStore(), nil
	}
}

func main() {
	if err := adjudicatordMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
