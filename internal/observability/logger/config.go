package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config arma el logger global del servicio.
type Config struct {
	// Env: "prod" loguea JSON; cualquier otra cosa, consola con colores.
	Env string

	// Level mínimo: "debug", "info", "warn", "error". Default "info".
	Level string

	// ServiceName se agrega como campo fijo en cada línea.
	ServiceName string
}

func (c Config) isProd() bool {
	return strings.ToLower(c.Env) == "prod"
}

// build materializa la Config. Nunca devuelve nil: ante cualquier fallo cae
// a un zap.NewProduction pelado antes que quedarse sin logs.
func build(cfg Config) *zap.Logger {
	var (
		zcfg zap.Config
		opts = []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	)

	if cfg.isProd() {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zcfg.Level = zap.NewAtomicLevelAt(levelFrom(cfg.Level))

	l, err := zcfg.Build(opts...)
	if err != nil {
		l, _ = zap.NewProduction()
		return l
	}

	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	return l
}

func levelFrom(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
