package envconfig

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"COAX_HOST", "COAX_BIND", "COAX_MODEL", "COAX_DEBUG", "COAX_NOHISTORY", "COAX_MAX_ROWS", "COAX_STRING_MAX"} {
		t.Setenv(key, "")
	}
	LoadConfig()

	if Host != "127.0.0.1:11434" {
		t.Errorf("Host = %q", Host)
	}
	if Bind != "127.0.0.1:8421" {
		t.Errorf("Bind = %q", Bind)
	}
	if Model != "phi3.5" {
		t.Errorf("Model = %q", Model)
	}
	if Debug || NoHistory {
		t.Error("Debug and NoHistory should default to false")
	}
	if MaxRows != 3 {
		t.Errorf("MaxRows = %d", MaxRows)
	}
	if StringMax != 42 {
		t.Errorf("StringMax = %d", StringMax)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("COAX_HOST", `"10.0.0.2:9000"`)
	t.Setenv("COAX_DEBUG", "1")
	t.Setenv("COAX_MAX_ROWS", "5")
	t.Setenv("COAX_STRING_MAX", "100")
	LoadConfig()
	t.Cleanup(LoadConfig)

	if Host != "10.0.0.2:9000" {
		t.Errorf("Host = %q, quotes should be stripped", Host)
	}
	if !Debug {
		t.Error("Debug should be true")
	}
	if MaxRows != 5 {
		t.Errorf("MaxRows = %d", MaxRows)
	}
	if StringMax != 100 {
		t.Errorf("StringMax = %d", StringMax)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("COAX_MAX_ROWS", "-2")
	t.Setenv("COAX_STRING_MAX", "zero")
	LoadConfig()
	t.Cleanup(LoadConfig)

	if MaxRows != 3 {
		t.Errorf("MaxRows = %d, invalid values should keep the default", MaxRows)
	}
	if StringMax != 42 {
		t.Errorf("StringMax = %d, invalid values should keep the default", StringMax)
	}
}

func TestAsMapCoversAllVars(t *testing.T) {
	m := AsMap()
	for _, key := range []string{"COAX_HOST", "COAX_BIND", "COAX_MODEL", "COAX_DEBUG", "COAX_NOHISTORY", "COAX_MAX_ROWS", "COAX_STRING_MAX"} {
		if _, ok := m[key]; !ok {
			t.Errorf("AsMap missing %s", key)
		}
	}
}
