package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/nguyentantai21042004/voice-insights/internal/config"
)

func main() {
	// handle loading environment variables from .env files
	envFiles := []string{".env", "voice-insights.env"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		envFiles = append(envFiles, filepath.Join(homeDir, ".config/voice-insights.env"))
	}
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load env files: %v\n", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("voice-insights"),
		kong.Description("Transcribes customer audio recordings and turns them into business insights."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
