package main

import (
	"time"

	"ssvep-observer/src/analysis"
	"ssvep-observer/src/config"
	"ssvep-observer/src/data_source/simulator"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------

// runScriptedSession drives a stimulus schedule against the live pipeline:
// each iteration turns the simulated flicker on, injects the matching
// trigger, and rests before the next one. The baseline window right before
// each onset sees no flicker, so the statistic should climb at the flicker
// frequency as triggers accumulate.
func runScriptedSession(pipeline *analysis.Pipeline, sims []*simulator.SimulatorSource, triggers int, cfg *models.MConfig, appLogger *logger.Logger) {
	integration := cfg.Processing.IntegrationTime
	period := models.MTriggerPeriod{
		Start: -integration,
		Stop:  integration,
	}

	// Let the buffer fill before the first trigger
	warmup := time.Duration(2*integration*float64(time.Second)) + time.Second
	appLogger.Info("Warming up for %v before first trigger", warmup)
	time.Sleep(warmup)

	for i := 0; i < triggers; i++ {
		for _, sim := range sims {
			sim.SetStimulusActive(true)
		}

		p := period
		pipeline.OnTrigger(models.MTriggerEvent{
			Value:      "flicker",
			Period:     &p,
			ReceivedAt: time.Now(),
		})

		time.Sleep(time.Duration(integration * float64(time.Second)))
		for _, sim := range sims {
			sim.SetStimulusActive(false)
		}

		appLogger.Info("Trigger %d/%d injected", i+1, triggers)
		time.Sleep(time.Duration(2 * integration * float64(time.Second)))
	}

	metrics := pipeline.Metrics()
	appLogger.Info("Session complete: %d pairs from %d triggers (%d recompute passes)",
		metrics.PairsAppended, metrics.TriggersReceived, metrics.RecomputeCount)
}

// -----------------------------------------------------------------------------

// reportStatistic logs the peak of each recomputed statistic map.
func reportStatistic(result *models.MStatisticResult, conf *config.Config, appLogger *logger.Logger) {
	if result == nil || result.Empty {
		appLogger.Info("Statistic recomputed: empty (not enough pairs yet)")
		return
	}

	summary := result.Summarize(conf.Processing.SignifThreshold)
	appLogger.Info("Statistic recomputed: peak %.2f at %.2f Hz on channel %d (%d pairs, %d bins over threshold)",
		summary.PeakStatistic, summary.PeakFreqHz, summary.PeakChannel, result.Pairs, summary.BinsOver)
}
