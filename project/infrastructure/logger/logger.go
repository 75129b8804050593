package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New はログレベルを指定して zap ロガーを作成します
// 有効なレベル: debug, info, warn, error（不正な値や空文字は info）
// debug の場合は開発向けのコンソール出力、それ以外は JSON 出力になります
func New(logLevel string) (*zap.Logger, error) {
	level := ParseLevel(logLevel)

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"

	if level == zapcore.DebugLevel {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

// ParseLevel はログレベル文字列を zapcore.Level に変換します
func ParseLevel(logLevel string) zapcore.Level {
	logLevel = strings.ToLower(strings.TrimSpace(logLevel))

	var level zapcore.Level
	if logLevel == "" || level.UnmarshalText([]byte(logLevel)) != nil {
		return zapcore.InfoLevel
	}
	return level
}
