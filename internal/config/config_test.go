package config

import "testing"

func TestParseBool(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"0", true, false},
		{"false", true, false},
		{"", true, true},
		{"", false, false},
		{"notabool", true, true},
		{"notabool", false, false},
	}
	for _, tc := range cases {
		t.Setenv("PARSE_BOOL_TEST", tc.value)
		if got := ParseBool("PARSE_BOOL_TEST", tc.def); got != tc.want {
			t.Errorf("ParseBool(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_URL", "")
	cfg := Load()
	if cfg.Port == "" || cfg.DatabaseDSN == "" || cfg.SecretKey == "" {
		t.Fatalf("expected defaults for unset env, got %+v", cfg)
	}
	if cfg.BaseURL != "http://localhost:"+cfg.Port {
		t.Errorf("BaseURL default should derive from port, got %q", cfg.BaseURL)
	}
}
