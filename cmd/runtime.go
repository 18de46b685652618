package cmd

import (
	"fmt"

	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/embedding"
	"github.com/kozaktomas/smart-attendance/internal/encodings"
	"github.com/kozaktomas/smart-attendance/internal/ledger"
	"github.com/kozaktomas/smart-attendance/internal/recognize"
	"github.com/kozaktomas/smart-attendance/internal/roster"
)

// runtime bundles the wired application components shared by all commands.
type runtime struct {
	config   *config.Config
	provider embedding.Provider
	roster   *roster.Roster
	store    *encodings.Store
	matcher  *recognize.Matcher
	ledger   *ledger.Ledger
}

func newRuntime() (*runtime, error) {
	cfg := config.Load()

	ros, err := roster.New(cfg.Storage.StudentDir())
	if err != nil {
		return nil, fmt.Errorf("initializing student directory: %w", err)
	}

	provider := embedding.NewClient(cfg.Embedding.URL)

	return &runtime{
		config:   cfg,
		provider: provider,
		roster:   ros,
		store:    encodings.NewStore(ros, cfg.Storage.EncodingsPath(), provider),
		matcher:  recognize.NewMatcher(provider),
		ledger:   ledger.New(cfg.Storage.LedgerPath()),
	}, nil
}
