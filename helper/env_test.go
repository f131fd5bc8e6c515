package helper

import (
	"os"
	"testing"
)

func TestGetEnvVarName(t *testing.T) {
	if got := GetEnvVarName("config-file"); got != "BQL_CONFIG_FILE" {
		t.Fatalf("expected BQL_CONFIG_FILE; got %q", got)
	}
}

func TestReadValueFromEnvWithDefault(t *testing.T) {
	k := GetEnvVarName("test-read-value")
	_ = os.Unsetenv(k)
	if got := ReadValueFromEnvWithDefault(k, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback; got %q", got)
	}
	_ = os.Setenv(k, "set")
	defer os.Unsetenv(k)
	if got := ReadValueFromEnvWithDefault(k, "fallback"); got != "set" {
		t.Fatalf("expected set; got %q", got)
	}
	var v string
	if err := ReadValueFromEnv(GetEnvVarName("test-missing-value"), &v); err == nil {
		t.Fatal("expected error for missing variable")
	}
}
