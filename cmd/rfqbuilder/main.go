package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/CHAND7/ETE-Robotics-App/internal/api"
	"github.com/CHAND7/ETE-Robotics-App/internal/catalog"
	"github.com/CHAND7/ETE-Robotics-App/internal/compose"
	"github.com/CHAND7/ETE-Robotics-App/internal/config"
	"github.com/CHAND7/ETE-Robotics-App/internal/dispatch"
	"github.com/CHAND7/ETE-Robotics-App/internal/server"
	"github.com/CHAND7/ETE-Robotics-App/internal/session"
	"github.com/CHAND7/ETE-Robotics-App/internal/store"
	"github.com/CHAND7/ETE-Robotics-App/internal/util"
	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

var (
	port    = flag.Int("port", 0, "listen port (config.toml wins when it sets one)")
	devMode = flag.Bool("dev", false, "development mode")
	dataDir = flag.String("dataDir", "", "data directory (overrides config)")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if *devMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	fmt.Println("==========================================")
	fmt.Println("  ETE Robotics - RFQ Builder")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	// First run: write the defaults out so the operator has a file to edit.
	if info.FileMissing {
		if err := config.SaveConfig(cfg); err != nil {
			log.Warn().Err(err).Msg("failed to write default config.toml")
		}
	}

	resolvedDataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}

	// No option data means no usable wizard step; refuse to start.
	cat, err := catalog.Load(cfg.Catalog.WorkbookPath, catalog.LoadOptions{
		ListsSheet:   cfg.Catalog.ListsSheet,
		BOMSheet:     cfg.Catalog.BOMSheet,
		BOMHeaderRow: cfg.Catalog.BOMHeaderRow,
	})
	if err != nil {
		log.Fatal().Err(err).Str("workbook", cfg.Catalog.WorkbookPath).
			Msg("failed to load option catalog")
	}
	log.Info().Strs("categories", cat.Categories()).Msg("option catalog loaded")

	steps, err := wizard.LoadSteps()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid step schema")
	}

	st, err := store.New(filepath.Join(resolvedDataDir, "rfqbuilder.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer st.Close()

	mailer, err := dispatch.NewMailer(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure smtp client")
	}

	handler := api.NewHandler(
		session.NewGate(cfg.Auth),
		session.NewManager(st, steps, cat),
		cat,
		compose.NewComposer(steps, cfg.Branding),
		mailer,
		st,
		config.GetDataPath(cfg, "exports", ""),
	)

	srv := server.New(cfg, handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	if !cfg.Server.DevMode {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("could not open a browser, please visit %s\n", url)
		}
	} else {
		fmt.Printf("dev mode: visit %s\n", url)
	}

	fmt.Println("\npress Ctrl+C to stop...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
}
