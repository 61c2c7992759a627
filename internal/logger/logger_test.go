package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (s *LoggerTestSuite) TestNewLogger() {
	tests := []struct {
		name    string
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{"default level", "", zapcore.InfoLevel, false},
		{"debug", "debug", zapcore.DebugLevel, false},
		{"upper case", "WARN", zapcore.WarnLevel, false},
		{"unknown level", "chatty", zapcore.InfoLevel, true},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			l, err := NewLogger(tc.level)
			if tc.wantErr {
				s.Error(err)
				s.Nil(l)
				return
			}
			s.Require().NoError(err)
			s.True(l.Core().Enabled(tc.want))
			if tc.want > zapcore.DebugLevel {
				s.False(l.Core().Enabled(tc.want - 1))
			}
		})
	}
}

func (s *LoggerTestSuite) TestSyncNilSafe() {
	var l *Logger
	s.NoError(l.Sync())
	s.NoError((&Logger{}).Sync())
}

func (s *LoggerTestSuite) TestNewLogger_WritesToStderr() {
	f, err := os.CreateTemp(s.T().TempDir(), "stderr")
	s.Require().NoError(err)
	defer f.Close()

	orig := os.Stderr
	os.Stderr = f
	l, err := NewLogger("info")
	os.Stderr = orig
	s.Require().NoError(err)

	l.Info("backtest finished")
	_ = l.Sync()

	raw, err := os.ReadFile(f.Name())
	s.Require().NoError(err)
	s.Contains(string(raw), `"msg":"backtest finished"`)
}
