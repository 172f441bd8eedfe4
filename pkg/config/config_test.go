package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestValidateRejectsMaxBelowMin(t *testing.T) {
	cfg := Default()
	cfg.Game.MinPlayersPerGame = 4
	cfg.Game.MaxPlayersPerGame = 3
	if err := cfg.validate(); err == nil {
		t.Errorf("expected validation error when max < min")
	}
}

func TestValidateRejectsTooManyPlayers(t *testing.T) {
	cfg := Default()
	cfg.Game.MaxPlayersPerGame = 6
	if err := cfg.validate(); err == nil {
		t.Errorf("expected validation error for max players above 5")
	}
}

func TestValidateRejectsEmptyBindAddress(t *testing.T) {
	cfg := Default()
	cfg.Server.BindAddress = ""
	if err := cfg.validate(); err == nil {
		t.Errorf("expected validation error for empty bind address")
	}
}
