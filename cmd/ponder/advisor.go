package main

import (
	"log/slog"

	"github.com/Veraticus/ponder/internal/advisor"
	"github.com/Veraticus/ponder/internal/config"
	"github.com/Veraticus/ponder/internal/service"
)

// initAdvisor creates the advisory client from configuration. A nil advisor
// means the heuristic advice is used. The returned func releases the client.
func initAdvisor() (service.Advisor, bool, func(), error) {
	cfg, err := config.LoadAdvisor()
	if err != nil {
		return nil, false, nil, err
	}

	adv, err := advisor.New(cfg.Client, slog.Default())
	if err != nil {
		return nil, false, nil, err
	}
	if adv == nil {
		return nil, cfg.Fallback, func() {}, nil
	}

	slog.Debug("Advisory service configured", "provider", cfg.Client.Provider, "fallback", cfg.Fallback)
	return adv, cfg.Fallback, adv.Close, nil
}
