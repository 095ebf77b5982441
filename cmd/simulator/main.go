package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/signalsfoundry/coverage-simulator/core"
	"github.com/signalsfoundry/coverage-simulator/internal/logging"
)

func main() {
	apFile := flag.String("aps", "", "AP coordinate file (identifier,x,y,z per line, no header)")
	configFile := flag.String("config", "", "optional run configuration JSON; defaults apply when omitted")
	outFile := flag.String("out", "", "write the CoverageResult JSON here (default stdout)")
	workers := flag.Int("workers", 0, "parallel evaluation workers (0 = one per CPU)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	if *apFile == "" {
		log.Error(ctx, "missing required -aps flag")
		os.Exit(2)
	}

	cfg := core.DefaultRunConfig()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			log.Error(ctx, "cannot open config file", logging.String("path", *configFile), logging.String("error", err.Error()))
			os.Exit(1)
		}
		cfg, err = core.LoadRunConfig(f)
		f.Close()
		if err != nil {
			log.Error(ctx, "invalid run configuration", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	aps, err := os.Open(*apFile)
	if err != nil {
		log.Error(ctx, "cannot open AP file", logging.String("path", *apFile), logging.String("error", err.Error()))
		os.Exit(1)
	}
	txs, err := core.LoadTransmitters(aps, cfg.Defaults)
	aps.Close()
	if err != nil {
		log.Error(ctx, "invalid AP coordinates", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "loaded transmitters", logging.Int("count", len(txs)))

	engine, err := core.NewSimulationEngine(cfg, core.WithLogger(log))
	if err != nil {
		log.Error(ctx, "invalid configuration", logging.String("error", err.Error()))
		os.Exit(1)
	}

	result, err := engine.Run(ctx, txs)
	if err != nil {
		os.Exit(1)
	}

	out := os.Stdout
	if *outFile != "" {
		out, err = os.Create(*outFile)
		if err != nil {
			log.Error(ctx, "cannot create output file", logging.String("path", *outFile), logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer out.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error(ctx, "cannot write result", logging.String("error", err.Error()))
		os.Exit(1)
	}

	for _, tier := range result.Tiers {
		log.Info(ctx, "coverage tier",
			logging.String("tier", tier.Tier),
			logging.Float64("percent", tier.Percent),
		)
	}
}
