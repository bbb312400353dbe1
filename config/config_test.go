package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() failed Validate(): %v", err)
	}
}

func TestValidateRejectsNegativeAccounts(t *testing.T) {
	cfg := Default()
	cfg.PredeployedAccounts = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() accepted a negative account count")
	}
}

func TestValidateRejectsForkBlockWithoutURL(t *testing.T) {
	cfg := Default()
	cfg.Fork = ForkConfig{BlockNumber: 5}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() accepted a fork block number without a fork URL")
	}
}

func TestValidateRejectsDumpPolicyWithoutPath(t *testing.T) {
	cfg := Default()
	cfg.DumpPolicy = DumpOnExit
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() accepted a dump policy without a dump path")
	}
}

func TestForking(t *testing.T) {
	cfg := Default()
	if cfg.Forking() {
		t.Fatalf("Default() config reports forking enabled")
	}
	cfg.Fork.URL = "http://localhost:5050"
	if !cfg.Forking() {
		t.Fatalf("config with a fork URL reports forking disabled")
	}
}
