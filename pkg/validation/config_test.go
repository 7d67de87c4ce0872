package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("Server")
	cv.Required("Addr", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}
	if NewConfigValidator("Server").Required("Addr", ":8080").HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_RangeFloat(t *testing.T) {
	tests := []struct {
		value   float64
		wantErr bool
	}{
		{0, false},
		{0.5, false},
		{1, false},
		{-0.1, true},
		{1.01, true},
	}
	for _, tt := range tests {
		cv := NewConfigValidator("Advisor").RangeFloat("MaxGini", tt.value, 0, 1)
		if cv.HasErrors() != tt.wantErr {
			t.Errorf("RangeFloat(%g) error = %v, want %v", tt.value, cv.HasErrors(), tt.wantErr)
		}
	}
}

func TestConfigValidator_RangeDuration(t *testing.T) {
	cv := NewConfigValidator("Server").RangeDuration("ReadTimeout", 10*time.Minute, time.Second, time.Minute)
	if !cv.HasErrors() {
		t.Error("Expected error for duration above range")
	}
	cv = NewConfigValidator("Server").RangeDuration("ReadTimeout", 15*time.Second, time.Second, time.Minute)
	if cv.HasErrors() {
		t.Errorf("Unexpected error: %v", cv.Validate())
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	drivers := []string{"memory", "file", "sqlite", "postgres"}

	if NewConfigValidator("Store").OneOf("Driver", "sqlite", drivers).HasErrors() {
		t.Error("sqlite should be accepted")
	}
	cv := NewConfigValidator("Store").OneOf("Driver", "mongo", drivers)
	if !cv.HasErrors() {
		t.Fatal("mongo should be rejected")
	}
	if !strings.Contains(cv.Validate().Error(), "Store.Driver") {
		t.Errorf("error should name the field, got %v", cv.Validate())
	}
}

func TestConfigValidator_HostPortAndURL(t *testing.T) {
	if NewConfigValidator("Server").HostPort("Addr", ":8080").HasErrors() {
		t.Error(":8080 should be a valid address")
	}
	if !NewConfigValidator("Server").HostPort("Addr", "8080").HasErrors() {
		t.Error("8080 without colon should be rejected")
	}
	if NewConfigValidator("Events").URL("NNG", "tcp://127.0.0.1:40899", "tcp", "ipc", "inproc").HasErrors() {
		t.Error("tcp url should be accepted")
	}
	if !NewConfigValidator("Events").URL("NNG", "http://x", "tcp").HasErrors() {
		t.Error("http scheme should be rejected")
	}
	if !NewConfigValidator("Events").URL("NNG", "not a url").HasErrors() {
		t.Error("schemeless value should be rejected")
	}
}

func TestConfigValidator_CollectsAllErrors(t *testing.T) {
	cv := NewConfigValidator("Config").
		Required("Addr", "").
		Positive("MaxBodyMB", 0).
		PositiveInt64("MaxDumpBytes", -1)

	if got := len(cv.Errors()); got != 3 {
		t.Fatalf("len(Errors) = %d, want 3", got)
	}
	if cv.Validate() == nil {
		t.Fatal("Validate should return the joined errors")
	}
}

func TestConfigValidator_CustomAndWhen(t *testing.T) {
	sentinel := errors.New("dsn missing")

	cv := NewConfigValidator("Store").
		When(true, func(v *ConfigValidator) {
			v.Custom("DSN", func() error { return sentinel })
		}).
		When(false, func(v *ConfigValidator) {
			v.Required("DataDir", "")
		})

	if len(cv.Errors()) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(cv.Errors()))
	}
	if !errors.Is(cv.Validate(), sentinel) {
		t.Error("Custom should wrap the returned error")
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "memory"); got != "memory" {
		t.Errorf("DefaultOr(\"\") = %q", got)
	}
	if got := DefaultOr(3, 5); got != 3 {
		t.Errorf("DefaultOr(3) = %d", got)
	}
}
