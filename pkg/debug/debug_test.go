package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "storage", map[string]bool{"storage": true}},
		{"multiple", "storage,engine", map[string]bool{"storage": true, "engine": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " storage , engine ", map[string]bool{"storage": true, "engine": true}},
		{"uppercase normalized", "STORAGE,Engine", map[string]bool{"storage": true, "engine": true}},
		{"empty segments", "storage,,engine", map[string]bool{"storage": true, "engine": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(got) = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("storage,engine")

	if !Enabled("storage") {
		t.Error("storage should be enabled")
	}
	if !Enabled("engine") {
		t.Error("engine should be enabled")
	}
	if Enabled("auth") {
		t.Error("auth should not be enabled")
	}

	categories = parseCategories("all")
	if !Enabled("anything") {
		t.Error("anything should be enabled via 'all'")
	}

	categories = parseCategories("")
	if Enabled("engine") {
		t.Error("nothing should be enabled when no categories set")
	}
}

func TestInit_EnvOverridesConfig(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	t.Setenv(EnvVar, "auth")
	Init("engine")

	if !Enabled("auth") || Enabled("engine") {
		t.Errorf("categories = %v, want env value [auth]", Categories())
	}

	t.Setenv(EnvVar, "")
	Init("engine,storage")

	got := Categories()
	if len(got) != 2 || got[0] != "engine" || got[1] != "storage" {
		t.Errorf("Categories() = %v, want [engine storage]", got)
	}
}

func TestLog(t *testing.T) {
	orig := categories
	origLogger := slog.Default()
	defer func() {
		categories = orig
		slog.SetDefault(origLogger)
	}()

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	categories = parseCategories("engine")
	Log("storage", "hidden")
	Log("engine", "shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("disabled category logged: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "debug=engine") || !strings.Contains(out, "key=value") {
		t.Errorf("enabled category output = %q", out)
	}
}
