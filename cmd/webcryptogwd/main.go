// Command webcryptogwd is the local WebCrypto gateway daemon: it serves
// the plaintext discovery endpoint and the websocket action channel,
// dispatching every decoded action to the software provider.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/app"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/config"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/discovery"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/transport"
)

const (
	logKeyListenAddr = "listenAddr"
	logKeyHome       = "home"
	logKeyStore      = "store"
	logKeySignal     = "signal"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	home := flag.String("home", "", "config/state directory (overrides config file)")
	listenAddr := flag.String("listen", "", "host:port to listen on (overrides config file)")
	storeBackend := flag.String("store", "", "store backend: file or badger (overrides config file)")
	passphrase := flag.String("passphrase", "", "passphrase protecting the local identity")
	flag.Parse()

	log := logrus.New()

	cfg, err := config.LoadDaemon(*configPath)
	if err != nil {
		log.WithError(err).Fatal("webcryptogwd: loading config")
	}
	if *home != "" {
		cfg.Home = *home
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *storeBackend != "" {
		cfg.Store = config.StoreBackend(*storeBackend)
	}
	if *passphrase != "" {
		cfg.Passphrase = *passphrase
	}

	log.WithFields(logrus.Fields{
		logKeyListenAddr: cfg.ListenAddr,
		logKeyHome:       cfg.Home,
		logKeyStore:      cfg.Store,
	}).Info("webcryptogwd: starting")

	a, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("webcryptogwd: wiring app")
	}
	defer a.Stores.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField(logKeySignal, sig.String()).Info("webcryptogwd: shutting down")
		cancel()
	}()

	go a.Dispatcher.WatchHotplug(ctx)

	router := mux.NewRouter()
	(&discovery.Server{
		Name:     cfg.ServerName,
		Version:  cfg.ServerVersion,
		Identity: a.Identity,
		PreKeys:  a.Stores.PreKey,
		Log:      log,
	}).Register(router)

	transport.RegisterWebSocketRoute(router, "/ws", log, func(conn transport.Conn) {
		defer conn.Close()
		if err := a.Dispatcher.Serve(ctx, conn); err != nil {
			log.WithError(err).Warn("webcryptogwd: connection ended")
		}
	})

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("webcryptogwd: serving")
	}
}
