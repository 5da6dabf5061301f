package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mehrbod2002/coinboard/internal/config"
	"github.com/mehrbod2002/coinboard/internal/history"
	"github.com/mehrbod2002/coinboard/internal/logger"
	"github.com/mehrbod2002/coinboard/internal/proxyclient"
	"github.com/mehrbod2002/coinboard/internal/tui"
	"github.com/mehrbod2002/coinboard/internal/updater"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logPath := os.Getenv("WATCH_LOG")
	if logPath == "" {
		logPath = "coinboard-watch.log"
	}
	f, err := logger.ToFile(logPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	client := proxyclient.New(cfg.BaseURL, cfg.UpstreamTimeout)

	chartCfg := updater.DefaultConfig()
	chartCfg.Interval = cfg.PollInterval
	chartCfg.MaxRetained = cfg.MaxRetained
	chartCfg.Labeler = history.NewLabeler(cfg.Location)

	model := tui.NewModel(client, client, chartCfg)
	defer model.Updater().Deactivate()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
