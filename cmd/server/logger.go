package main

import (
	"io"
	"os"

	"github.com/JulianC775/Gubs/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the process logger. --verbose wins over the configured level.
func newLogger(cfg *config.Config, verbose bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if cfg.LogFile != "" {
		output := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100, // megabytes
			MaxBackups: 4,
			MaxAge:     7, // days
			LocalTime:  true,
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, output))
	}
	return logger, nil
}
