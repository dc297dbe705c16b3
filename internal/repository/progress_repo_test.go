package repository

import (
	"fmt"
	"strings"
	"testing"

	"olymprep-backend/internal/models"
)

func TestStatusRankSQL(t *testing.T) {
	frag := statusRankSQL("user_progress.status")

	if !strings.HasPrefix(frag, "CASE user_progress.status") {
		t.Errorf("Expected CASE over the given expression, got %q", frag)
	}
	if !strings.HasSuffix(frag, "ELSE 0 END") {
		t.Errorf("Expected unknown statuses to rank lowest, got %q", frag)
	}
	for _, status := range models.StatusLifecycle {
		arm := fmt.Sprintf("WHEN '%s' THEN %d", status, models.StatusRank(status))
		if !strings.Contains(frag, arm) {
			t.Errorf("Missing rank arm %q in %q", arm, frag)
		}
	}
}

func TestStatusRankSQL_MatchesLifecycleOrder(t *testing.T) {
	for i := 1; i < len(models.StatusLifecycle); i++ {
		prev, curr := models.StatusLifecycle[i-1], models.StatusLifecycle[i]
		if models.StatusRank(prev) >= models.StatusRank(curr) {
			t.Errorf("Rank of %s (%d) should be below %s (%d)",
				prev, models.StatusRank(prev), curr, models.StatusRank(curr))
		}
	}
}
