package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/kenokrieger/lectron/core"
	"github.com/kenokrieger/lectron/internal/logging"
	"github.com/kenokrieger/lectron/internal/observability"
	"github.com/kenokrieger/lectron/kb"
	"github.com/kenokrieger/lectron/timectrl"
)

func main() {
	pathwayPath := flag.String("pathway", "configs/yeast_cell_cycle.json", "pathway definition to simulate")
	steps := flag.Int("steps", 100_000, "number of measured simulation steps")
	stimulusSteps := flag.Int("stimulus-steps", -1, "override the pathway's stimulus step count (-1 keeps the file value)")
	realTime := flag.Bool("realtime", false, "pace steps against the wall clock instead of running accelerated")
	out := flag.String("out", "", "write the activity time series as CSV to this file (default stdout)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	flag.Parse()

	ctx := context.Background()
	log := logging.NewFromEnv()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		fail(ctx, log, "tracing init failed", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	f, err := os.Open(*pathwayPath)
	if err != nil {
		fail(ctx, log, "failed to open pathway definition", err)
	}
	def, err := core.LoadPathway(f)
	f.Close()
	if err != nil {
		fail(ctx, log, "failed to load pathway definition", err)
	}

	library := kb.NewLibrary()
	if err := library.Register(def); err != nil {
		fail(ctx, log, "failed to register pathway", err)
	}
	board, err := library.Build(def.Name)
	if err != nil {
		fail(ctx, log, "failed to build board", err)
	}
	log.Info(ctx, "board built",
		logging.String("pathway", def.Name),
		logging.Int("blocks", board.Size()),
		logging.Int("connections", len(def.Connections)),
	)

	engine := core.NewSimulationEngine(board)
	engine.SetLogger(log)

	if *metricsAddr != "" {
		collector, err := observability.NewSimCollector(nil)
		if err != nil {
			fail(ctx, log, "failed to register metrics", err)
		}
		engine.SetMetrics(collector)

		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error(ctx, "metrics server failed", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsAddr))
	}

	// Stimulus phase: hold the stimulated block at full voltage before
	// measuring, the way the physical experiment primes the network with a
	// constant supply.
	if def.Stimulus != nil {
		stim := *def.Stimulus
		if *stimulusSteps >= 0 {
			stim.Steps = *stimulusSteps
		}
		blk, err := board.Block(stim.Label)
		if err != nil {
			fail(ctx, log, "stimulus block not on board", err)
		}
		log.Info(ctx, "applying stimulus",
			logging.String("label", stim.Label),
			logging.Int("steps", stim.Steps),
		)
		for i := 0; i < stim.Steps; i++ {
			blk.TurnOn(board.Params())
			if err := engine.StepOnce(ctx); err != nil {
				fail(ctx, log, "stimulus phase failed", err)
			}
		}
	}

	// Measured phase: record activities from here on.
	recorder := core.NewStepRecorder(board)
	engine.RegisterStepListener(recorder.Listen)

	log.Info(ctx, "starting measured run",
		logging.String("pathway", def.Name),
		logging.Int("steps", *steps),
		logging.Any("realtime", *realTime),
	)

	if *realTime {
		deltaT := time.Duration(board.Params().DeltaT * float64(time.Second))
		controller := timectrl.NewStepController(deltaT, deltaT, timectrl.RealTime)
		var stepErr error
		controller.AddListener(func(int) {
			if stepErr != nil {
				return
			}
			stepErr = engine.StepOnce(ctx)
		})
		<-controller.Start(*steps)
		if stepErr != nil {
			fail(ctx, log, "realtime run failed", stepErr)
		}
	} else {
		if err := engine.Run(ctx, *steps); err != nil {
			fail(ctx, log, "run failed", err)
		}
	}

	w := os.Stdout
	if *out != "" {
		outFile, err := os.Create(*out)
		if err != nil {
			fail(ctx, log, "failed to create output file", err)
		}
		defer outFile.Close()
		w = outFile
	}
	if err := recorder.WriteCSV(w); err != nil {
		fail(ctx, log, "failed to write activity CSV", err)
	}

	log.Info(ctx, "simulation complete",
		logging.Int("total_steps", engine.Steps()),
		logging.Int("recorded_steps", recorder.Len()),
	)
}

func fail(ctx context.Context, log logging.Logger, msg string, err error) {
	log.Error(ctx, msg, logging.String("error", err.Error()))
	os.Exit(1)
}
