package main

import (
	"fmt"
	"github.com/OpenTransitTools/timecovariates/app/covariate-svc/covariatesvc"
	"github.com/ardanlabs/conf"
	"github.com/nats-io/nats.go"
	logger "log"
	"os"
	"os/signal"
	"syscall"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "COVARIATE_SVC : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Web struct {
			Port int `conf:"default:8085"`
		}
		NATS struct {
			Url            string `conf:"default:nats://localhost:4222"`
			RequestSubject string `conf:"default:time-covariates"`
			Disable        bool   `conf:"default:false"`
		}
		MaxTimestamps int `conf:"default:100000"`
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Serve calendar and holiday time covariates for model inputs"

	const prefix = "COVARIATE_SVC"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	// =========================================================================
	// Start NATS

	var natsConn *nats.Conn
	if !cfg.NATS.Disable {
		log.Printf("main: Connecting to NATS : %s", cfg.NATS.Url)
		natsConn, err = nats.Connect(cfg.NATS.Url)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer func() {
			log.Printf("main: NATS Stopping : %s", cfg.NATS.Url)
			natsConn.Close()
		}()
	}

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return covariatesvc.StartServices(log, covariatesvc.Conf{
		HttpPort:       cfg.Web.Port,
		RequestSubject: cfg.NATS.RequestSubject,
		MaxTimestamps:  cfg.MaxTimestamps,
	}, natsConn, shutdown)
}
