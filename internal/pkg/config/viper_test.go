package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
app:
  name: otp
modules:
  otp:
    enabled: true
    sweeper:
      interval_seconds: 60
      batch_size: 500
    cors: "http://a.test, http://b.test,,"
    topics:
      - otp.issued
      - otp.verified
    headers: "x:1,y:2,broken"
`

func TestNewViperFromBytes(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		_, err := NewViperFromBytes(" ", []byte(sampleYAML))
		if !errors.Is(err, ErrConfigTypeRequired) {
			t.Fatalf("expected ErrConfigTypeRequired, got %v", err)
		}
	})

	t.Run("reads typed values", func(t *testing.T) {
		cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
		if err != nil {
			t.Fatalf("load config: %v", err)
		}

		if got := cfg.GetString("app.name"); got != "otp" {
			t.Fatalf("app.name = %q", got)
		}
		if !cfg.GetBool("modules.otp.enabled") {
			t.Fatalf("modules.otp.enabled should be true")
		}
		if got := cfg.GetSecond("modules.otp.sweeper.interval_seconds"); got != time.Minute {
			t.Fatalf("interval = %s, want 1m", got)
		}
		if got := cfg.GetInt("modules.otp.sweeper.batch_size"); got != 500 {
			t.Fatalf("batch_size = %d", got)
		}
		if got := cfg.GetInt("modules.otp.missing"); got != 0 {
			t.Fatalf("missing key should be zero, got %d", got)
		}
	})

	t.Run("arrays and maps", func(t *testing.T) {
		cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
		if err != nil {
			t.Fatalf("load config: %v", err)
		}

		cors := cfg.GetArray("modules.otp.cors")
		if len(cors) != 2 || cors[0] != "http://a.test" || cors[1] != "http://b.test" {
			t.Fatalf("unexpected cors: %#v", cors)
		}

		topics := cfg.GetArray("modules.otp.topics")
		if len(topics) != 2 || topics[1] != "otp.verified" {
			t.Fatalf("unexpected topics: %#v", topics)
		}

		if got := cfg.GetArray("modules.otp.nothing"); len(got) != 0 {
			t.Fatalf("expected empty array, got %#v", got)
		}

		headers := cfg.GetMap("modules.otp.headers")
		if len(headers) != 2 || headers["x"] != "1" || headers["y"] != "2" {
			t.Fatalf("unexpected headers: %#v", headers)
		}
	})
}

func TestNewViper_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MODULES_OTP_SWEEPER_BATCH_SIZE", "25")

	cfg, err := NewViper(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	defer cfg.Close()

	if got := cfg.GetInt("modules.otp.sweeper.batch_size"); got != 25 {
		t.Fatalf("env override not applied, got %d", got)
	}
}
