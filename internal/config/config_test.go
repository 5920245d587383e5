package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsMemoryJWT(t *testing.T) {
	t.Setenv("KARGO_STORE", StoreMemory)
	t.Setenv("KARGO_AUTH", AuthJWT)
	t.Setenv("KARGO_JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.RequestTimeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.RequestTimeout)
	}
	if cfg.Pricing.PricePerKm != 10 || cfg.Pricing.PricePerMinute != 2 || cfg.Pricing.Currency != "₱" {
		t.Errorf("pricing = %+v", cfg.Pricing)
	}
	if cfg.Income.PlatformShare != 0.4 || cfg.Income.YearAware {
		t.Errorf("income = %+v", cfg.Income)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Manila" {
		t.Errorf("location = %v", cfg.Location)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"firestore without project", map[string]string{"KARGO_STORE": StoreFirestore, "KARGO_AUTH": AuthJWT, "KARGO_JWT_SECRET": "s"}},
		{"jwt without secret", map[string]string{"KARGO_STORE": StoreMemory, "KARGO_AUTH": AuthJWT}},
		{"unknown store", map[string]string{"KARGO_STORE": "mongo", "KARGO_AUTH": AuthJWT, "KARGO_JWT_SECRET": "s"}},
		{"bad float", map[string]string{"KARGO_STORE": StoreMemory, "KARGO_AUTH": AuthJWT, "KARGO_JWT_SECRET": "s", "KARGO_PRICE_PER_KM": "ten"}},
		{"share out of range", map[string]string{"KARGO_STORE": StoreMemory, "KARGO_AUTH": AuthJWT, "KARGO_JWT_SECRET": "s", "KARGO_PLATFORM_SHARE": "1.5"}},
		{"bad timezone", map[string]string{"KARGO_STORE": StoreMemory, "KARGO_AUTH": AuthJWT, "KARGO_JWT_SECRET": "s", "KARGO_TIMEZONE": "Mars/Olympus"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("KARGO_FIREBASE_PROJECT_ID", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadYearAware(t *testing.T) {
	t.Setenv("KARGO_STORE", StoreMemory)
	t.Setenv("KARGO_AUTH", AuthJWT)
	t.Setenv("KARGO_JWT_SECRET", "secret")
	t.Setenv("KARGO_INCOME_YEAR_AWARE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Income.YearAware {
		t.Fatal("expected YearAware")
	}
}
