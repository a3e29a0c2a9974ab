package logger

import (
	"testing"

	"github.com/samvad-hq/scryfall-go/internal/config"
	"github.com/samvad-hq/scryfall-go/pkg/publishers"
	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
)

func TestInitSetsPackageLogger(t *testing.T) {
	S = nil
	log, err := Init(&config.Config{AppName: "test", LogLevel: "debug"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if S == nil {
		t.Fatalf("expected package logger to be set")
	}
	log.DebugObj("debug message", "payload", map[string]any{"k": "v"})
	_ = Close()
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("ignored", "k", 1)
	ErrorObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close before Init: %v", err)
	}
}

func TestLoggersSatisfyLibraryInterfaces(t *testing.T) {
	var _ scryfall.Logger = zapLogger{}
	var _ publishers.Logger = zapLogger{}
	var _ scryfall.Logger = &NopLogger{}
	var _ Logger = &NopLogger{}
}
