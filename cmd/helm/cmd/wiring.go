package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cmorgan-fx/helm/broker"
	"github.com/cmorgan-fx/helm/broker/coinbase"
	"github.com/cmorgan-fx/helm/broker/oanda"
	"github.com/cmorgan-fx/helm/broker/paper"
	"github.com/cmorgan-fx/helm/config"
	"github.com/cmorgan-fx/helm/journal"
	"github.com/cmorgan-fx/helm/risk"
	"github.com/cmorgan-fx/helm/router"
)

const paperBalance = 100000

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(configPath)
}

// buildRouter assembles connectors for every configured venue. Paper mode
// gets in-memory venues under the same routing names, so symbol routing
// behaves identically in both modes. Venues with missing credentials are
// excluded, not fatal.
func buildRouter(ctx context.Context, cfg *config.Config) *router.Router {
	if !cfg.Live() {
		fx := paper.New(router.VenueOANDA, paperBalance)
		crypto := paper.New(router.VenueCoinbase, paperBalance)
		equities := paper.New(router.VenueIBKR, paperBalance)
		for _, v := range []*paper.Venue{fx, crypto, equities} {
			_ = v.Connect(ctx)
		}
		return router.New(fx, crypto, equities)
	}

	var venues []broker.Connector

	if cfg.Venues.OANDA.Configured() {
		conn := oanda.New(cfg.Venues.OANDA.Token, cfg.Venues.OANDA.AccountID, cfg.Venues.OANDA.Practice)
		if err := conn.Connect(ctx); err != nil {
			log.Warn().Err(err).Str("venue", conn.Name()).Msg("venue unreachable at startup")
		}
		venues = append(venues, conn)
	} else {
		log.Warn().Str("venue", router.VenueOANDA).Msg("venue not configured, excluded from routing")
	}

	if cfg.Venues.Coinbase.Configured() {
		conn := coinbase.New(cfg.Venues.Coinbase.APIKey, cfg.Venues.Coinbase.APISecret)
		if err := conn.Connect(ctx); err != nil {
			log.Warn().Err(err).Str("venue", conn.Name()).Msg("venue unreachable at startup")
		}
		venues = append(venues, conn)
	} else {
		log.Warn().Str("venue", router.VenueCoinbase).Msg("venue not configured, excluded from routing")
	}

	return router.New(venues...)
}

func buildGate(cfg *config.Config) *risk.Gate {
	monitor := risk.NewMonitor(risk.DefaultCorrelationPolicy(cfg.Correlation.MaxCorrelated))
	return risk.NewGate(cfg.Charter, cfg.Live(), monitor)
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return journal.Discard{}, nil
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.DecisionsFile, cfg.Journal.OrdersFile)
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}
