package config

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"KVS_PORT_COUNT", "KVS_BUFFER_SIZE", "KVS_MAX_CONNECTIONS",
		"KVS_ARRAY_CAPACITY", "KVS_HASH_SLOTS", "KVS_NATS_URL",
	} {
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	logger := zerolog.Nop()
	cfg, err := Load(&logger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BufferSize != 1024 {
		t.Fatalf("BufferSize = %d, want 1024", cfg.BufferSize)
	}
	if cfg.HashSlots != 1024 {
		t.Fatalf("HashSlots = %d, want 1024", cfg.HashSlots)
	}
	if cfg.PortCount != 1 {
		t.Fatalf("PortCount = %d, want 1", cfg.PortCount)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	os.Setenv("KVS_BUFFER_SIZE", "256")
	defer os.Unsetenv("KVS_BUFFER_SIZE")
	logger := zerolog.Nop()
	cfg, err := Load(&logger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BufferSize != 256 {
		t.Fatalf("BufferSize = %d, want 256 from env override", cfg.BufferSize)
	}
}

func TestValidateRejectsBadBufferSize(t *testing.T) {
	cfg := &Config{BufferSize: 512, PortCount: 1, MaxConnections: 1, ArrayCapacity: 1, HashSlots: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate accepted an unsupported buffer size")
	}
}
