package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pressroom-labs/brandwatch-cli/internal/classifier"
	"github.com/pressroom-labs/brandwatch-cli/internal/config"
	"github.com/pressroom-labs/brandwatch-cli/internal/mention"
	"github.com/pressroom-labs/brandwatch-cli/internal/model"
	"github.com/pressroom-labs/brandwatch-cli/internal/spokesperson"
	"github.com/pressroom-labs/brandwatch-cli/internal/store"
	"github.com/pressroom-labs/brandwatch-cli/pkg/anthropic"
)

// analysisEnv bundles the shared wiring for the analyze and serve commands.
type analysisEnv struct {
	Store      store.Store
	Brands     []model.BrandSpec
	Matcher    *mention.Matcher
	Registry   *spokesperson.Registry
	Oracle     *classifier.TierOracle
	Classifier *classifier.Classifier
}

func (e *analysisEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// initAnalysis builds the full classification environment from config.
func initAnalysis(ctx context.Context) (*analysisEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	brands, err := config.LoadBrands(cfg.Brands.File)
	if err != nil {
		st.Close()
		return nil, err
	}

	matcher, err := mention.NewMatcher(brands)
	if err != nil {
		st.Close()
		return nil, err
	}

	registry, err := spokesperson.Load(cfg.Spokesperson.Dir)
	if err != nil {
		st.Close()
		return nil, err
	}

	var oracle *classifier.TierOracle
	if cfg.Oracle.Key != "" {
		oracle = classifier.NewTierOracle(anthropic.NewClient(cfg.Oracle.Key), cfg.Oracle)
	} else {
		zap.L().Warn("no oracle key configured, zero-count articles will fail instead of escalating")
	}

	env := &analysisEnv{
		Store:    st,
		Brands:   brands,
		Matcher:  matcher,
		Registry: registry,
		Oracle:   oracle,
	}
	if oracle != nil {
		env.Classifier = classifier.New(matcher, registry, oracle)
	} else {
		env.Classifier = classifier.New(matcher, registry, nil)
	}

	zap.L().Info("analysis environment ready",
		zap.Int("brands", len(brands)),
		zap.Int("spokespersons", registry.Len()),
		zap.Bool("oracle", oracle != nil),
	)
	return env, nil
}
