// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moov-io/achfile"
	"github.com/moov-io/achfile/pkg/config"
	configadmin "github.com/moov-io/achfile/pkg/config/admin"
	"github.com/moov-io/achfile/pkg/database"
	"github.com/moov-io/achfile/pkg/events"
	"github.com/moov-io/achfile/pkg/files"
	"github.com/moov-io/achfile/pkg/storage"
	"github.com/moov-io/achfile/pkg/util"
	"github.com/moov-io/achfile/x/route"
	"github.com/moov-io/achfile/x/trace"
	"github.com/moov-io/base/admin"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

var (
	flagConfigFile = flag.String("config", "", "Filepath for config file to load")
	flagEnvFile    = flag.String("env", ".env", "Filepath of a .env file to load, if it exists")
)

func main() {
	flag.Parse()

	if err := loadEnv(*flagEnvFile); err != nil {
		panic(fmt.Sprintf("failed to load %s: %v", *flagEnvFile, err))
	}

	cfg := readConfig(util.Or(os.Getenv("CONFIG_FILE"), *flagConfigFile))
	cfg.Logger.Log("startup", fmt.Sprintf("Starting achfile server version %s", achfile.Version))

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	// Listen for application termination.
	errs := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	// Setup our tracer before anything creates spans
	_, tracerCloser, err := trace.NewTracer(cfg.Logger, cfg.Tracing)
	if err != nil {
		panic(fmt.Sprintf("ERROR setting up tracing: %v", err))
	}
	defer tracerCloser.Close()

	// Spin up admin HTTP server
	adminServer := admin.NewServer(cfg.Admin.BindAddress)
	adminServer.AddVersionHandler(achfile.Version) // Setup 'GET /version'
	go func() {
		cfg.Logger.Log("admin", fmt.Sprintf("listening on %s", adminServer.BindAddr()))
		if err := adminServer.Listen(); err != nil {
			err = fmt.Errorf("problem starting admin http: %v", err)
			cfg.Logger.Log("admin", err)
			errs <- err
		}
	}()
	defer adminServer.Shutdown()

	configadmin.RegisterRoutes(adminServer, cfg)

	// migrate database
	db, err := database.New(ctx, cfg.Logger, cfg.Database)
	if err != nil {
		panic(fmt.Sprintf("error creating database: %v", err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			cfg.Logger.Log("exit", err)
		}
	}()
	adminServer.AddLivenessCheck("database", db.Ping)

	store, err := storage.NewStorage(cfg.Logger, cfg.Storage)
	if err != nil {
		panic(fmt.Sprintf("ERROR setting up storage: %v", err))
	}
	defer store.Close()

	emitter, err := events.NewEmitter(ctx, cfg.Logger, cfg.Events)
	if err != nil {
		panic(fmt.Sprintf("ERROR setting up events: %v", err))
	}
	defer emitter.Shutdown(context.Background())

	repo := files.NewRepo(db)
	defer repo.Close()

	fileService := files.NewService(cfg.Logger, cfg, repo, store, emitter)

	// Start our file transfers with the ODFI
	controller, err := setupFileTransferController(cfg, fileService, adminServer)
	if err != nil {
		panic(fmt.Sprintf("ERROR setting up file transfers: %v", err))
	}
	if controller != nil {
		go controller.Start(ctx)
		defer controller.Close()
	}

	// Create HTTP handler
	handler := mux.NewRouter()
	route.PingRoute(cfg.Logger, handler)
	files.NewRouter(cfg.Logger, fileService).RegisterRoutes(handler)

	// Create main HTTP server
	serve := &http.Server{
		Addr:    cfg.Http.BindAddress,
		Handler: handler,
		TLSConfig: &tls.Config{
			InsecureSkipVerify:       false,
			PreferServerCipherSuites: true,
			MinVersion:               tls.VersionTLS12,
		},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdownServer := func() {
		if err := serve.Shutdown(context.TODO()); err != nil {
			cfg.Logger.Log("shutdown", err)
		}
	}
	defer shutdownServer()

	// Start main HTTP server
	go func() {
		if certFile, keyFile := os.Getenv("HTTPS_CERT_FILE"), os.Getenv("HTTPS_KEY_FILE"); certFile != "" && keyFile != "" {
			cfg.Logger.Log("startup", fmt.Sprintf("binding to %s for secure HTTP server", cfg.Http.BindAddress))
			if err := serve.ListenAndServeTLS(certFile, keyFile); err != nil {
				cfg.Logger.Log("exit", err)
			}
		} else {
			cfg.Logger.Log("startup", fmt.Sprintf("binding to %s for HTTP server", cfg.Http.BindAddress))
			if err := serve.ListenAndServe(); err != nil {
				cfg.Logger.Log("exit", err)
			}
		}
	}()

	if err := <-errs; err != nil {
		cfg.Logger.Log("exit", err)
	}
}

// loadEnv reads path into the environment without overriding variables
// which are already set. A missing file is ignored.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func readConfig(path string) *config.Config {
	cfg, err := config.FromFile(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if err := validateTemplate(cfg.ODFI); err != nil {
		panic(fmt.Sprintf("ERROR: %v", err))
	}
	return cfg
}
