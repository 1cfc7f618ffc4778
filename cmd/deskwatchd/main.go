// deskwatchd: activity ingestion service.
// Accepts events from monitor agents, persists them to sqlite, and
// pushes each ingested event to websocket observers.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/deskwatch/deskwatch/internal/config"
	"github.com/deskwatch/deskwatch/internal/log"
	"github.com/deskwatch/deskwatch/pkg/hub"
	"github.com/deskwatch/deskwatch/pkg/store"
	"github.com/deskwatch/deskwatch/pkg/web"
)

var version = "1.0.0"

var (
	addr = flag.String("addr", config.DefaultListenAddr, "listen address")
	dsn  = flag.String("db", config.DefaultDatabase, "sqlite database path")
)

func main() {
	flag.Parse()
	log.Init(config.LogLevel())

	listenAddr := config.ListenAddr(*addr)
	databaseDSN := config.DatabaseDSN(*dsn)

	st, err := store.Open(databaseDSN)
	if err != nil {
		log.Error("failed to open store", "err", err, "dsn", databaseDSN)
		os.Exit(1)
	}
	defer st.Close()

	h := hub.New()
	srv := web.NewServer(st, h, version)

	go func() {
		log.Info("deskwatchd listening",
			"version", version,
			"addr", listenAddr,
			"db", databaseDSN,
			"ws", "ws://"+listenAddr+"/ws/events",
		)
		if err := srv.Listen(listenAddr); err != nil {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		log.Error("shutdown error", "err", err)
	}
}
