package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/smrutirpanigrahi/dlib/internal/config"
	"github.com/smrutirpanigrahi/dlib/internal/dataio"
	"github.com/smrutirpanigrahi/dlib/internal/utils/logger"
	"github.com/smrutirpanigrahi/dlib/pkg/ranksvm"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting ranktrain...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SIGINT/SIGTERM stop training between iterations; the best iterate so
	// far is still written out
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping after current iteration")
		cancel()
	}()

	dataset, err := loadDataset(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dataset")
	}
	log.Info().
		Int("queries", len(dataset)).
		Int("pairs", dataset.PairCount()).
		Msg("dataset loaded")

	trainer, err := ranksvm.NewTrainerC(cfg.C)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid trainer configuration")
	}
	if err := trainer.SetEpsilon(cfg.Epsilon); err != nil {
		log.Fatal().Err(err).Msg("invalid trainer configuration")
	}
	trainer.SetMaxIterations(cfg.MaxIterations)
	trainer.SetNonnegativeWeights(cfg.NonnegativeWeights)
	if cfg.Workers > 0 {
		trainer.SetWorkers(cfg.Workers)
	}
	if cfg.Verbose {
		trainer.BeVerbose()
	}

	model, err := trainer.Train(ctx, dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}

	accuracy, err := ranksvm.EvaluateRanking(model, dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to evaluate trained model")
	}
	log.Info().
		Float64("ordering_accuracy", accuracy).
		Int("dim", model.Dim()).
		Msgf("trained model orders %.4f of training pairs correctly", accuracy)

	if err := dataio.SaveModel(cfg.ModelPath, model); err != nil {
		log.Fatal().Err(err).Msg("failed to write model")
	}
	log.Info().Str("path", cfg.ModelPath).Msg("model written")
}

func loadDataset(ctx context.Context, cfg *config.AppConfig) (ranksvm.Dataset, error) {
	if cfg.DatasetURL != "" {
		log.Info().Str("url", cfg.DatasetURL).Msg("fetching dataset")
		return dataio.FetchDataset(ctx, cfg.DatasetURL)
	}
	log.Info().Str("path", cfg.DatasetPath).Msg("reading dataset")
	return dataio.LoadDataset(cfg.DatasetPath)
}
