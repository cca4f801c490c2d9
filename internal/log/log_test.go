package log

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPackageLevelFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))

	Debugw("dropped below the level")
	Infow("computed almanac", "location", "london", "days", 30)
	Warnf("skipping %s", "mcmurdo")
	Errorw("store unavailable")

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, expected 3", len(entries))
	}

	tests := []struct {
		level zapcore.Level
		msg   string
	}{
		{zapcore.InfoLevel, "computed almanac"},
		{zapcore.WarnLevel, "skipping mcmurdo"},
		{zapcore.ErrorLevel, "store unavailable"},
	}
	for i, tt := range tests {
		if entries[i].Level != tt.level || entries[i].Message != tt.msg {
			t.Errorf("entry %d = %v %q, expected %v %q", i, entries[i].Level, entries[i].Message, tt.level, tt.msg)
		}
	}

	if got := entries[0].ContextMap()["location"]; got != "london" {
		t.Errorf("location field = %v", got)
	}
}

func TestInit(t *testing.T) {
	for _, debug := range []bool{true, false} {
		if err := Init(debug); err != nil {
			t.Fatalf("Init(%v): %v", debug, err)
		}
		if GetZapLogger() == nil || GetSugaredLogger() == nil {
			t.Fatalf("Init(%v) left no logger", debug)
		}
		enabled := GetZapLogger().Core().Enabled(zapcore.DebugLevel)
		if enabled != debug {
			t.Errorf("Init(%v): debug enabled = %v", debug, enabled)
		}
	}
}

func TestLogHTTPRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{200, zapcore.DebugLevel},
		{404, zapcore.InfoLevel},
		{500, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		LogHTTPRequest(HTTPLogEntry{Method: "GET", Path: "/api/sun/london", Status: tt.status, Size: 42})
	}

	entries := logs.AllUntimed()
	if len(entries) != len(tests) {
		t.Fatalf("got %d entries, expected %d", len(entries), len(tests))
	}
	for i, tt := range tests {
		if entries[i].Level != tt.level {
			t.Errorf("status %d logged at %v, expected %v", tt.status, entries[i].Level, tt.level)
		}
		fields := entries[i].ContextMap()
		if fields["path"] != "/api/sun/london" || fields["status"] != int64(tt.status) {
			t.Errorf("unexpected fields %v", fields)
		}
	}
}
