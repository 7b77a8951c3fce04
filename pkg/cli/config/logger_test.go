package config_test

import (
	"bytes"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "debug", level: "debug", format: "console"},
		{name: "DEBUG is case insensitive", level: "DEBUG", format: "console"},
		{name: "info", level: "info", format: "json"},
		{name: "WARN", level: "WARN", format: "JSON"},
		{name: "error", level: "error", format: "console"},
		{name: "invalid level", level: "verbose", format: "console", wantErr: true},
		{name: "empty level", level: "", format: "console", wantErr: true},
		{name: "invalid format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := &config.Logger{
				Level:  tt.level,
				Format: tt.format,
				Writer: &buf,
			}

			result, err := logger.Configure()
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.NotNil(t, result)
		})
	}
}

func TestLogger_Configure_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := (&config.Logger{Level: "warn", Format: "json", Writer: &buf}).Configure()
	gt.NoError(t, err)

	logger.Info("hidden message")
	logger.Warn("visible message")

	gt.String(t, buf.String()).NotContains("hidden message")
	gt.String(t, buf.String()).Contains("visible message")
}

func TestLogger_Configure_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := (&config.Logger{Level: "info", Format: "json", Writer: &buf}).Configure()
	gt.NoError(t, err)

	logger.Info("configured",
		"github", struct{ Token string }{Token: "super-secret"},
		"webhook", "https://hooks.slack.com/services/T000/B000/XXXX",
	)

	gt.String(t, buf.String()).Contains("configured")
	gt.String(t, buf.String()).NotContains("super-secret")
	gt.String(t, buf.String()).NotContains("T000/B000")
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()
	gt.Array(t, flags).Length(2)

	var names []string
	for _, f := range flags {
		names = append(names, f.Names()[0])
	}
	gt.Value(t, names).Equal([]string{"log-level", "log-format"})
}
