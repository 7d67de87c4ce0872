package validation

import (
	"strings"
	"testing"
)

func TestStruct_AnalyzeRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     AnalyzeRequest
		wantErr string
	}{
		{"raw data", AnalyzeRequest{Network: "bitcoin", Data: "country\nus"}, ""},
		{"node list", AnalyzeRequest{Nodes: []map[string]any{{"country": "us"}}}, ""},
		{"alias network", AnalyzeRequest{Network: "sol", Data: "x"}, ""},
		{"auto network", AnalyzeRequest{Network: "auto", Data: "x"}, ""},
		{"neither data nor nodes", AnalyzeRequest{Network: "bitcoin"}, "required when"},
		{"bad network", AnalyzeRequest{Network: "dogecoin", Data: "x"}, "unsupported network"},
		{"bad scenario", AnalyzeRequest{Data: "x", Scenario: "meteor"}, "unsupported scenario"},
		{"51 scenario", AnalyzeRequest{Data: "x", Scenario: "51"}, ""},
		{"long target", AnalyzeRequest{Data: "x", Targets: []string{strings.Repeat("a", 101)}}, "must not exceed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnalyzeRequest(&tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestStruct_SimulateRequestNeedsNodes(t *testing.T) {
	if err := Struct(&SimulateRequest{Scenario: "region"}); err == nil {
		t.Fatal("expected error for empty node list")
	}
	req := &SimulateRequest{Nodes: []map[string]any{{"country": "de"}}, Scenario: "region", Targets: []string{"de"}}
	if err := Struct(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_DetectRejectsBlank(t *testing.T) {
	err := Struct(&DetectRequest{Data: "   \n"})
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("error = %v, want required", err)
	}
}

func TestStruct_RecordRequest(t *testing.T) {
	gini := 0.4
	ok := RecordRequest{UserID: "u1", Name: "Mainnet", Network: "ethereum", NodeData: "[]", Metrics: &RecordMetrics{Gini: &gini}}
	if err := Struct(&ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := 1.5
	ok.Metrics.Gini = &bad
	if err := Struct(&ok); err == nil {
		t.Error("expected error for gini above 1")
	}

	if err := Struct(&RecordRequest{Name: "x", Network: "bitcoin", NodeData: "x"}); err == nil {
		t.Error("expected error for missing user id")
	}
	if err := Struct(&RecordRequest{UserID: "u", Name: "x", NodeData: "x"}); err == nil {
		t.Error("expected error for missing network")
	}
}

func TestValidateRecordPatch(t *testing.T) {
	if err := ValidateRecordPatch(&RecordPatch{}); err == nil {
		t.Error("empty patch should be rejected")
	}
	name := "renamed"
	if err := ValidateRecordPatch(&RecordPatch{Name: &name}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	blank := " "
	if err := ValidateRecordPatch(&RecordPatch{Name: &blank}); err == nil {
		t.Error("blank name should be rejected")
	}
	if err := ValidateRecordPatch(nil); err == nil {
		t.Error("nil patch should be rejected")
	}
}

func TestStruct_Nil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Error("nil request should be rejected")
	}
	if err := ValidateAnalyzeRequest(nil); err == nil {
		t.Error("nil analyze request should be rejected")
	}
}
