package lib

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SubnetCalcVersion is an external string variable identifying the version
// of this binary.
var SubnetCalcVersion = "v0.1.0"

// SubnetCalcBuiltTime is an external string variable identifying the built
// time of this binary.
var SubnetCalcBuiltTime = "UNKNOWN"

// CreateLogger creates a zap SugaredLogger from given configuration.
func CreateLogger(config LoggingConfig) (*zap.SugaredLogger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil // disable sampling as it is useless in our scale
	if config.File != "" {
		zapCfg.OutputPaths = []string{config.File}
	}
	if config.Format != "" {
		if config.Format == "console_rich" {
			zapCfg.Encoding = "console"
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapCfg.Encoding = config.Format
		}
	}
	if zapCfg.Encoding == "console" {
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	switch config.Level {
	case "": // no-op
	case "debug":
		zapCfg.Level.SetLevel(zap.DebugLevel)
	case "info":
		zapCfg.Level.SetLevel(zap.InfoLevel)
	case "warn":
		zapCfg.Level.SetLevel(zap.WarnLevel)
	case "error":
		zapCfg.Level.SetLevel(zap.ErrorLevel)
	case "fatal":
		zapCfg.Level.SetLevel(zap.FatalLevel)
	default:
		return nil, errors.New("unknown logging level: " + config.Level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// GetHomePath returns the home path of the current user.
func GetHomePath() string {
	if runtime.GOOS == "windows" {
		if p := os.Getenv("HOME"); p != "" {
			return p
		} else if p := os.Getenv("USERPROFILE"); p != "" {
			return p
		}
		d := os.Getenv("HOMEDRIVE")
		p := os.Getenv("HOMEPATH")
		if d != "" && p != "" {
			return d + p
		}
		return ""
	}
	return os.Getenv("HOME")
}
