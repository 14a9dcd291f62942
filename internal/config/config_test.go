package config_test

import (
	"testing"
	"time"

	"github.com/ganghaofan/mealorder/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Load()
	if cfg.BaseURL == "" || cfg.Timeout <= 0 {
		t.Fatalf("bad defaults: %+v", cfg)
	}
	if cfg.AddonQuantityCap != 10 {
		t.Errorf("AddonQuantityCap = %d, want 10", cfg.AddonQuantityCap)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MEAL_API_BASE_URL", "https://meals.example.com")
	t.Setenv("MEAL_API_PREFIX", "/api/v1")
	t.Setenv("MEAL_API_TIMEOUT", "3s")
	t.Setenv("MEAL_DEBUG", "true")
	t.Setenv("MEAL_ADDON_QUANTITY_CAP", "5")

	cfg := config.Load()
	if cfg.BaseURL != "https://meals.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.APIPrefix != "/api/v1" {
		t.Errorf("APIPrefix = %q", cfg.APIPrefix)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.AddonQuantityCap != 5 {
		t.Errorf("AddonQuantityCap = %d", cfg.AddonQuantityCap)
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("MEAL_API_TIMEOUT", "soon")
	t.Setenv("MEAL_ADDON_QUANTITY_CAP", "lots")
	cfg := config.Load()
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want default", cfg.Timeout)
	}
	if cfg.AddonQuantityCap != 10 {
		t.Errorf("AddonQuantityCap = %d, want default", cfg.AddonQuantityCap)
	}
}
