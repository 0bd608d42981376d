package monitoring

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogger(t *testing.T) {
	original := Logger
	defer func() { Logger = original }()

	var buf bytes.Buffer
	custom := logrus.New()
	custom.SetOutput(&buf)

	SetLogger(custom)
	Logger.Warn("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("custom logger did not receive message, got %q", buf.String())
	}

	// nil installs a discarding logger, which must not panic
	SetLogger(nil)
	Logger.WithField("k", "v").Error("dropped")
	if Logger == nil {
		t.Fatal("SetLogger(nil) left Logger nil")
	}
}

func TestConfigure(t *testing.T) {
	std := logrus.StandardLogger()
	orig := std.GetLevel()
	defer std.SetLevel(orig)

	if err := Configure("debug"); err != nil {
		t.Fatalf("Configure(debug) failed: %v", err)
	}
	if std.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", std.GetLevel())
	}

	if err := Configure("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
