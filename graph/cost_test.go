package graph

import "testing"

func TestRecordLLMCall_KnownModelComputesCost(t *testing.T) {
	ct := NewCostTracker("run-1", "USD")
	if err := ct.RecordLLMCall("gpt-4o", 1_000_000, 500_000, "node-a"); err != nil {
		t.Fatalf("RecordLLMCall: %v", err)
	}

	// 1M input tokens @ $2.50/1M + 0.5M output tokens @ $10.00/1M = 2.50 + 5.00
	want := 7.50
	if got := ct.GetTotalCost(); got != want {
		t.Errorf("GetTotalCost() = %v, want %v", got, want)
	}
}

func TestRecordLLMCall_UnknownModelCostsZeroButStillRecords(t *testing.T) {
	ct := NewCostTracker("run-1", "USD")
	if err := ct.RecordLLMCall("some-future-model", 1000, 1000, "node-a"); err != nil {
		t.Fatalf("RecordLLMCall: %v", err)
	}
	if got := ct.GetTotalCost(); got != 0 {
		t.Errorf("expected zero cost for an unpriced model, got %v", got)
	}
	if len(ct.GetCallHistory()) != 1 {
		t.Error("expected the call to still be recorded in history")
	}
}

func TestRecordLLMCall_AccumulatesAcrossModels(t *testing.T) {
	ct := NewCostTracker("run-1", "USD")
	_ = ct.RecordLLMCall("gpt-4o-mini", 1_000_000, 0, "a")
	_ = ct.RecordLLMCall("gpt-4o-mini", 1_000_000, 0, "b")

	costs := ct.GetCostByModel()
	if got := costs["gpt-4o-mini"]; got != 0.30 {
		t.Errorf("expected combined gpt-4o-mini cost of 0.30, got %v", got)
	}

	in, out := ct.GetTokenUsage()
	if in != 2_000_000 || out != 0 {
		t.Errorf("expected 2M input tokens tracked, got in=%d out=%d", in, out)
	}
}

func TestRecordLLMCall_DisabledTrackerRecordsNothing(t *testing.T) {
	ct := NewCostTracker("run-1", "USD")
	ct.Disable()
	_ = ct.RecordLLMCall("gpt-4o", 1000, 1000, "a")

	if len(ct.GetCallHistory()) != 0 {
		t.Error("expected no calls recorded while disabled")
	}

	ct.Enable()
	_ = ct.RecordLLMCall("gpt-4o", 1000, 1000, "a")
	if len(ct.GetCallHistory()) != 1 {
		t.Error("expected recording to resume after Enable")
	}
}

func TestSetCustomPricing_OverridesDefaultTable(t *testing.T) {
	ct := NewCostTracker("run-1", "USD")
	ct.SetCustomPricing("gpt-4o", 1.00, 1.00)
	_ = ct.RecordLLMCall("gpt-4o", 1_000_000, 1_000_000, "a")

	if got := ct.GetTotalCost(); got != 2.00 {
		t.Errorf("expected custom pricing applied, got %v", got)
	}
}

func TestReset_ClearsAccumulatedStateButKeepsPricing(t *testing.T) {
	ct := NewCostTracker("run-1", "USD")
	ct.SetCustomPricing("custom-model", 5.0, 5.0)
	_ = ct.RecordLLMCall("custom-model", 1_000_000, 0, "a")

	ct.Reset()

	if got := ct.GetTotalCost(); got != 0 {
		t.Errorf("expected TotalCost reset to 0, got %v", got)
	}
	if len(ct.GetCallHistory()) != 0 {
		t.Error("expected call history cleared")
	}

	_ = ct.RecordLLMCall("custom-model", 1_000_000, 0, "a")
	if got := ct.GetTotalCost(); got != 5.0 {
		t.Errorf("expected custom pricing preserved across Reset, got %v", got)
	}
}

func TestGetCostByModel_ReturnsACopy(t *testing.T) {
	ct := NewCostTracker("run-1", "USD")
	_ = ct.RecordLLMCall("gpt-4o", 1_000_000, 0, "a")

	costs := ct.GetCostByModel()
	costs["gpt-4o"] = 999

	if got := ct.GetCostByModel()["gpt-4o"]; got == 999 {
		t.Error("expected GetCostByModel to return a defensive copy")
	}
}
