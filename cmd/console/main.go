package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"

	"github.com/example/pricetag-widget/internal/config"
	"github.com/example/pricetag-widget/internal/console"
	"github.com/example/pricetag-widget/internal/httpclient"
	"github.com/example/pricetag-widget/internal/logging"
	"github.com/example/pricetag-widget/internal/usecase"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mainImpl() error {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewConsoleLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	processor := httpclient.NewImageProcessor(
		cfg.Backend.BaseURL,
		cfg.Backend.Endpoint,
		&http.Client{Timeout: cfg.Backend.Timeout},
		logger,
	)
	uc := usecase.NewSubmissionUseCase(processor, usecase.NewMemoryGuard(), logger)

	model := ""
	if len(cfg.Models) > 0 {
		model = cfg.Models[0]
	}
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	session := console.NewSession(uc, rl.Stdout(), model)
	fmt.Fprintf(rl.Stdout(), "price tag console, backend %s%s, model %s (type help)\n",
		cfg.Backend.BaseURL, cfg.Backend.Endpoint, model)

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Ctrl+C while a submission is outstanding abandons it
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		quit := session.Execute(ctx, line)
		stop()
		if quit {
			break
		}
	}
	logger.Debug("console closed")
	return nil
}
