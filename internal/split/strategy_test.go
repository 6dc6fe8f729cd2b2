package split

import (
	"testing"

	"github.com/tably/tably/internal/models"
)

func TestNextMethod(t *testing.T) {
	tests := []struct {
		name        string
		current     models.SplitMethod
		activeCount int
		want        models.SplitMethod
	}{
		{name: "dynamic drops to equal at one", current: models.SplitDynamicEqual, activeCount: 1, want: models.SplitEqual},
		{name: "equal promotes to dynamic above one", current: models.SplitEqual, activeCount: 2, want: models.SplitDynamicEqual},
		{name: "dynamic stays dynamic at three", current: models.SplitDynamicEqual, activeCount: 3, want: models.SplitDynamicEqual},
		{name: "equal stays equal at one", current: models.SplitEqual, activeCount: 1, want: models.SplitEqual},
		{name: "by items never switches at one", current: models.SplitByItems, activeCount: 1, want: models.SplitByItems},
		{name: "by items never switches at five", current: models.SplitByItems, activeCount: 5, want: models.SplitByItems},
		{name: "by amount never switches", current: models.SplitByAmount, activeCount: 1, want: models.SplitByAmount},
		{name: "dynamic at zero is left alone", current: models.SplitDynamicEqual, activeCount: 0, want: models.SplitDynamicEqual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextMethod(tt.current, tt.activeCount); got != tt.want {
				t.Errorf("NextMethod(%s, %d) = %s, want %s", tt.current, tt.activeCount, got, tt.want)
			}
		})
	}
}

// TestNextMethod_Idempotent pins that re-evaluating at an unchanged count is
// a no-op: the label only ever flips at an actual 1<->N boundary crossing.
func TestNextMethod_Idempotent(t *testing.T) {
	methods := []models.SplitMethod{
		models.SplitByItems, models.SplitByAmount, models.SplitEqual, models.SplitDynamicEqual,
	}
	for _, m := range methods {
		for count := 0; count <= 5; count++ {
			once := NextMethod(m, count)
			if twice := NextMethod(once, count); twice != once {
				t.Errorf("NextMethod not idempotent: %s at %d -> %s -> %s", m, count, once, twice)
			}
		}
	}
}
