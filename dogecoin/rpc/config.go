// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package rpc

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config describes how to reach a dogecoind-compatible node.
type Config struct {
	URL     string
	User    string
	Pass    string
	Timeout time.Duration
}

// defaultTimeout is the default per-call RPC timeout.
const defaultTimeout = 30 * time.Second

// LoadConfigFromEnv loads an .env file if present, then reads
// DOGE_RPC_URL, DOGE_RPC_USER, and DOGE_RPC_PASS. A missing .env file is
// not an error: the variables may already be set in the environment.
func LoadConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	url := os.Getenv("DOGE_RPC_URL")
	if url == "" {
		return Config{}, fmt.Errorf("DOGE_RPC_URL is not set")
	}

	return Config{
		URL:     url,
		User:    os.Getenv("DOGE_RPC_USER"),
		Pass:    os.Getenv("DOGE_RPC_PASS"),
		Timeout: defaultTimeout,
	}, nil
}
