package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 全局日志，InitLogger 之前为 Nop
var Logger = zap.NewNop()

func InitLogger(mode string) error {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = rootLogger(logger)
	return nil
}

// rootLogger 各模块通过 Named 派生子 logger，名称形如 matte.matting
func rootLogger(l *zap.Logger) *zap.Logger {
	return l.Named("matte").With(zap.String("service", "mattekit"))
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
