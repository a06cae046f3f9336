package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	appconfig "arbscan/config"
	"arbscan/engine"
	"arbscan/logger"
	"arbscan/venue"
	"arbscan/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	venueA := flag.String("a", "", "First venue to scan ("+strings.Join(venue.Names(), ", ")+")")
	venueB := flag.String("b", "", "Second venue to scan")
	watch := flag.Bool("watch", false, "Keep scanning at the configured refresh interval")
	flag.Parse()

	if *venueA == "" || *venueB == "" {
		fmt.Fprintln(os.Stderr, "both -a and -b venues are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := appconfig.LoadConfig(appconfig.ResolveConfigPath(*configPath, "config/config.yml"))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithEnv("APP_ENV").WithFields(logger.Fields{
		"service": cfg.Arbscan.Name,
		"version": cfg.Arbscan.Version,
		"venue_a": *venueA,
		"venue_b": *venueB,
	}).Info("starting arbscan")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.InitCloudWatch(cfg.Storage.Reports.S3.Region, "", cfg.Logging.DashboardName)
		logger.StartReport(ctx, log, 30*time.Second)
	}

	a, err := venue.New(*venueA, cfg)
	if err != nil {
		log.WithError(err).Error("failed to create venue client")
		os.Exit(1)
	}
	b, err := venue.New(*venueB, cfg)
	if err != nil {
		log.WithError(err).Error("failed to create venue client")
		os.Exit(1)
	}

	var reports *writer.ReportWriter
	if cfg.Storage.Reports.Enabled {
		reports, err = writer.NewReportWriter(ctx, cfg.Storage.Reports)
		if err != nil {
			log.WithError(err).Error("failed to create report writer")
			os.Exit(1)
		}
	} else {
		log.WithComponent("main").Debug("report storage disabled; skipping writer")
	}

	var publisher *writer.KafkaPublisher
	if cfg.Storage.Kafka.Enabled {
		publisher, err = writer.NewKafkaPublisher(cfg.Storage.Kafka)
		if err != nil {
			log.WithError(err).Error("failed to create kafka publisher")
			os.Exit(1)
		}
		defer publisher.Close()
	}

	eng := engine.New(cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown requested")
		cancel()
	}()

	if err := runScan(ctx, eng, a, b, reports, publisher); err != nil {
		log.WithError(err).Error("scan failed")
		os.Exit(1)
	}

	if *watch {
		ticker := time.NewTicker(cfg.Engine.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("arbscan stopped")
				return
			case <-ticker.C:
				if err := runScan(ctx, eng, a, b, reports, publisher); err != nil {
					if ctx.Err() != nil {
						log.Info("arbscan stopped")
						return
					}
					log.WithError(err).Error("scan failed")
				}
			}
		}
	}
}

func runScan(ctx context.Context, eng *engine.Engine, a, b venue.Venue, reports *writer.ReportWriter, publisher *writer.KafkaPublisher) error {
	res, err := eng.Scan(ctx, a, b)
	if err != nil {
		return err
	}
	logger.LogPerformanceEntry(logger.GetLogger().WithComponent("main"), "engine", "scan", res.Duration,
		logger.Fields{"scan_id": res.ScanID, "opportunities": len(res.Opportunities)})

	printTable(res)

	if reports != nil {
		if err := reports.Write(ctx, res); err != nil {
			logger.GetLogger().WithComponent("main").WithError(err).Error("failed to persist scan report")
		}
	}
	if publisher != nil {
		publisher.Publish(ctx, res)
	}
	return nil
}

func printTable(res *engine.Result) {
	fmt.Printf("\nscan %s  %s vs %s  (%s policy, %d opportunities, %s)\n",
		res.ScanID, res.VenueA, res.VenueB, res.Policy, len(res.Opportunities),
		res.StartedAt.Format(time.RFC3339))

	if len(res.Opportunities) == 0 {
		fmt.Println("no opportunities")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tBID_A\tASK_A\tBID_B\tASK_B\tSPREAD%\tBUY\tSELL\tBUY_FILL\tSELL_FILL\tBUY_VOL\tSELL_VOL\tDEPOSIT(BUY)\tWITHDRAW(SELL)\tDEPOSIT(SELL)\tWITHDRAW(BUY)")
	for _, op := range res.Opportunities {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\t%.2f\t%s\t%s\t%g\t%g\t%g\t%g\t%s\t%s\t%s\t%s\n",
			op.Symbol, op.BidA, op.AskA, op.BidB, op.AskB, op.SpreadPct,
			op.BuyVenue, op.SellVenue,
			op.MeanBuyFillPrice, op.MeanSellFillPrice, op.BuyFillVolume, op.SellFillVolume,
			op.DepositChainsBuyVenue, op.WithdrawChainsSellVenue,
			op.DepositChainsSellVenue, op.WithdrawChainsBuyVenue)
	}
	tw.Flush()
}
