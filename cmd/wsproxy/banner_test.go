package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wsproxy_go/internal/config"
)

func TestPrintBanner(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 8080
	cfg.FrKey = "dest"
	cfg.ProxyProtocol = true

	var buf bytes.Buffer
	printBanner(&buf, cfg, 42, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	out := buf.String()

	assert.Contains(t, out, "[2024-01-02 03:04:05 +0000]")
	assert.Contains(t, out, "PID:            42")
	assert.Contains(t, out, "Address:        0.0.0.0:8080")
	assert.Contains(t, out, "Proxy protocol: enabled")
	assert.Contains(t, out, "Passphrase:     none")
	assert.Contains(t, out, "URL request:    /?dest=")
}

func TestPrintBanner_NoKey(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 1

	var buf bytes.Buffer
	printBanner(&buf, cfg, 1, time.Now())
	assert.Contains(t, buf.String(), "URL request:    /?\n")
	assert.Contains(t, buf.String(), "Proxy protocol: disabled")
}
