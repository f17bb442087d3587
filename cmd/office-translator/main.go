package main

import (
	"os"

	"github.com/rclifen122/Office-Document-Translator/internal/cli"
	"github.com/rclifen122/Office-Document-Translator/internal/logger"
	"go.uber.org/zap"
)

// Version information
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	log := logger.NewLogger(false)
	defer func() {
		_ = log.Sync()
	}()

	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)

	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
