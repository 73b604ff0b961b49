package main

import (
	"flag"
	"log"

	"github.com/dzeckelev/quickpay/config"
	"github.com/dzeckelev/quickpay/db"
	"github.com/dzeckelev/quickpay/logging"
)

func main() {
	fConfig := flag.String("config", "config.json", "Configuration file path.")
	fDown := flag.Int("down", 0, "Number of migrations to revert.")

	flag.Parse()

	cfg, err := config.Load(*fConfig)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.Log)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if *fDown > 0 {
		err = db.Rollback(conn, *fDown)
	} else {
		err = db.Migrate(conn)
	}
	if err != nil {
		log.Fatal(err)
	}

	version, dirty, err := db.Version(conn)
	if err != nil {
		log.Fatal(err)
	}

	logger.Info("schema migrated", "version", version, "dirty", dirty)
}
