package config

import (
	"testing"
	"time"

	"github.com/genricoloni/mucwidget/internal/domain"
	"go.uber.org/zap"
)

func TestGetEnvAsInt(t *testing.T) {
	t.Run("valid int", func(t *testing.T) {
		t.Setenv("TEST_INT", "42")
		if got := getEnvAsInt("TEST_INT", 10); got != 42 {
			t.Errorf("got %d, want 42", got)
		}
	})

	t.Run("invalid int returns default", func(t *testing.T) {
		t.Setenv("TEST_INT_BAD", "not_a_number")
		if got := getEnvAsInt("TEST_INT_BAD", 99); got != 99 {
			t.Errorf("got %d, want 99", got)
		}
	})
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")
	if got := getEnvAsDuration("TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("got %v, want 90s", got)
	}

	t.Setenv("TEST_DUR_NEG", "-5s")
	if got := getEnvAsDuration("TEST_DUR_NEG", time.Minute); got != time.Minute {
		t.Errorf("negative duration should fall back, got %v", got)
	}
}

func TestParseInstances(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []domain.WidgetInstance
		wantErr bool
	}{
		{
			name: "single",
			raw:  "1:80",
			want: []domain.WidgetInstance{{ID: 1, MinHeight: 80}},
		},
		{
			name: "several with spaces",
			raw:  "1:80, 7:140 ,",
			want: []domain.WidgetInstance{{ID: 1, MinHeight: 80}, {ID: 7, MinHeight: 140}},
		},
		{name: "missing height", raw: "1", wantErr: true},
		{name: "bad id", raw: "x:10", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstances(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d instances, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("instance %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewAppConfig(t *testing.T) {
	t.Setenv("WIDGET_LAYOUT_POLICY", "TOGGLE")
	t.Setenv("WIDGET_INSTANCES", "garbage")
	t.Setenv("WIDGET_APP_SCHEME", "")

	cfg := NewAppConfig(zap.NewNop())

	if cfg.LayoutPolicy != domain.PolicyToggle {
		t.Errorf("LayoutPolicy = %q, want toggle", cfg.LayoutPolicy)
	}
	if cfg.AppScheme != defaultScheme {
		t.Errorf("AppScheme = %q, want %q", cfg.AppScheme, defaultScheme)
	}
	if len(cfg.Instances) != 1 || cfg.Instances[0].ID != 1 {
		t.Errorf("invalid instances should fall back to default, got %+v", cfg.Instances)
	}
	if cfg.TallThreshold != defaultTallThreshold {
		t.Errorf("TallThreshold = %d, want %d", cfg.TallThreshold, defaultTallThreshold)
	}
}

func TestParsePolicyUnknown(t *testing.T) {
	if got := parsePolicy(zap.NewNop(), "diagonal"); got != domain.PolicySize {
		t.Errorf("got %q, want size", got)
	}
}
