package storefront

import "testing"

func TestRequireNonEmpty_PassesWhenSet(t *testing.T) {
	if err := RequireNonEmpty("value", "error"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestRequireNonEmpty_FailsWhenEmpty(t *testing.T) {
	err := RequireNonEmpty("", "product id is required")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != StatusInvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err.Code)
	}
	if err.Message != "product id is required" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestRequirePositive_Passes(t *testing.T) {
	if err := RequirePositive(1, "error"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestRequirePositive_FailsOnZeroAndNegative(t *testing.T) {
	for _, v := range []int{0, -3} {
		if err := RequirePositive(v, "must be positive"); err == nil {
			t.Errorf("expected error for %d", v)
		}
	}
}

func TestRequireAtLeast(t *testing.T) {
	if err := RequireAtLeast(50, 50, "too few"); err != nil {
		t.Errorf("expected nil at boundary, got %v", err)
	}
	err := RequireAtLeast(49, 50, "too few")
	if err == nil {
		t.Fatal("expected error below minimum")
	}
	if err.Code != StatusFailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %v", err.Code)
	}
}

func TestRequireNotEmpty(t *testing.T) {
	if err := RequireNotEmpty([]int{1}, "empty"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := RequireNotEmpty([]string{}, "empty"); err == nil {
		t.Error("expected error for empty slice")
	}
	if err := RequireNotEmpty[string](nil, "empty"); err == nil {
		t.Error("expected error for nil slice")
	}
}

func TestRequireOneOf(t *testing.T) {
	allowed := []string{"delivery", "pickup"}
	if err := RequireOneOf("pickup", allowed, "bad type"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	err := RequireOneOf("drone", allowed, "bad type")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Code != StatusInvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err.Code)
	}
}
