package logger

import (
	"context"
	"log/slog"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/fueldelivery/internal/config"
)

func TestModuleProvidesConfiguredLogger(t *testing.T) {
	cases := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tc := range cases {
		t.Run("level "+tc.level, func(t *testing.T) {
			var resolved *slog.Logger
			app := fxtest.New(t,
				fx.Supply(&config.Config{LogLevel: tc.level}),
				Module,
				fx.Populate(&resolved),
			)
			app.RequireStart()
			defer app.RequireStop()

			if !resolved.Enabled(context.Background(), tc.enabled) {
				t.Errorf("expected %s to be enabled", tc.enabled)
			}
			if resolved.Enabled(context.Background(), tc.muted) {
				t.Errorf("expected %s to be muted", tc.muted)
			}
		})
	}
}
