package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/voice-insights/internal/app"
	"github.com/nguyentantai21042004/voice-insights/internal/config"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
	"github.com/nguyentantai21042004/voice-insights/internal/summarizer"
	"github.com/nguyentantai21042004/voice-insights/internal/watcher"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" env:"VOICE_INSIGHTS_CONFIG" default:"config.yaml" type:"path" help:"Path to the YAML configuration file"`
	LogLevel string `env:"VOICE_INSIGHTS_LOG_LEVEL" help:"Override logging.level from the config file"`
}

type CLI struct {
	Globals `embed:""`

	Serve      ServeCmd      `cmd:"" default:"withargs" help:"Serve the HTTP API and watch the inbox directory"`
	Transcribe TranscribeCmd `cmd:"" help:"Transcribe one audio file and store the transcript"`
	Summarize  SummarizeCmd  `cmd:"" help:"Generate insights from every stored transcript"`
	Export     ExportCmd     `cmd:"" help:"Export stored transcripts to a docx document"`
}

// setup loads the config and logger shared by every command.
func (g *Globals) setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	return cfg, logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, os.Stdout), nil
}

type ServeCmd struct{}

func (s *ServeCmd) Run(g *Globals) error {
	cfg, log, err := g.setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Voice Insights")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Engine: %s (timeout %s)", cfg.Engine.Backend, cfg.Engine.Timeout)
	log.Info(ctx, "Database: %s", cfg.Database.Driver)
	log.Info(ctx, "Max Concurrent Processing: %d", cfg.Performance.MaxConcurrent)
	if cfg.Watch.Enabled {
		log.Info(ctx, "Watching: %s every %s", cfg.Watch.Dir, cfg.Watch.Interval)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info(ctx, "Press Ctrl+C to stop")
	if err := a.Run(ctx); err != nil {
		return err
	}
	log.Info(ctx, "Voice Insights stopped")
	return nil
}

type TranscribeCmd struct {
	File string `arg:"" type:"existingfile" help:"Audio file to transcribe"`
	Name string `short:"n" required:"" help:"Display name stored with the transcript"`
	Date string `short:"d" required:"" help:"Date label stored with the transcript"`
}

func (t *TranscribeCmd) Run(g *Globals) error {
	cfg, log, err := g.setup()
	if err != nil {
		return err
	}
	cfg.Watch.Enabled = false

	data, err := os.ReadFile(t.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", t.File, err)
	}
	in, err := watcher.AcceptUpload(watcher.Upload{
		Filename: filepath.Base(t.File),
		Data:     data,
		Name:     t.Name,
		Date:     t.Date,
	})
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Processor().Process(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Println(res.Text)
	return nil
}

type SummarizeCmd struct {
	Docx string `type:"path" help:"Also write the insights to this docx file"`
}

func (s *SummarizeCmd) Run(g *Globals) error {
	cfg, log, err := g.setup()
	if err != nil {
		return err
	}
	cfg.Watch.Enabled = false

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Insights().Generate(context.Background())
	if err != nil {
		return err
	}
	if report.Transcripts == 0 {
		fmt.Println("No transcripts stored yet.")
		return nil
	}
	fmt.Println(report.Raw)

	if s.Docx != "" {
		if err := summarizer.ExportInsights("Customer Insights", report.Raw, s.Docx); err != nil {
			return fmt.Errorf("write %s: %w", s.Docx, err)
		}
		log.Info(context.Background(), "Insights written to %s", s.Docx)
	}
	return nil
}

type ExportCmd struct {
	Output string `arg:"" type:"path" help:"Destination docx file"`
}

func (e *ExportCmd) Run(g *Globals) error {
	cfg, log, err := g.setup()
	if err != nil {
		return err
	}
	cfg.Watch.Enabled = false

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	recs, err := a.Store().ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list transcripts: %w", err)
	}
	if err := summarizer.ExportTranscripts("Transcripts", recs, e.Output); err != nil {
		return fmt.Errorf("write %s: %w", e.Output, err)
	}
	log.Info(ctx, "Exported %d transcripts to %s", len(recs), e.Output)
	return nil
}
