package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/goliatone/go-repository-audit/cache"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPatternKind(t *testing.T) {
	tests := map[string]string{
		"dish_7":    PatternNarrow,
		`dish_\*`:   PatternNarrow,
		"dish_*":    PatternBroad,
		"dish_?":    PatternBroad,
		"dish_[12]": PatternBroad,
	}
	for pattern, want := range tests {
		if got := PatternKind(pattern); got != want {
			t.Errorf("PatternKind(%q) = %s, expected %s", pattern, got, want)
		}
	}
}

func TestStampHook(t *testing.T) {
	m := New()
	hook := m.StampHook()
	ctx := context.Background()

	hook(ctx, "dish.Create", audit.Result{Operation: audit.OperationCreate, Applied: audit.SlotsFor(audit.OperationCreate)})
	hook(ctx, "dish.Update", audit.Result{Operation: audit.OperationUpdate, Applied: []audit.Slot{audit.SlotUpdatedAt}})
	hook(ctx, "category.Update", audit.Result{Operation: audit.OperationUpdate, Missing: audit.SlotsFor(audit.OperationUpdate)})
	hook(ctx, "dish.Update", audit.Result{Operation: audit.OperationUpdate, Err: errors.New("boom")})

	checks := []struct {
		operation, outcome string
		want               float64
	}{
		{"CREATE", OutcomeStamped, 1},
		{"UPDATE", OutcomeStamped, 1},
		{"UPDATE", OutcomeNotAuditable, 1},
		{"UPDATE", OutcomeFailed, 1},
		{"CREATE", OutcomeFailed, 0},
	}
	for _, c := range checks {
		got := testutil.ToFloat64(m.stamps.WithLabelValues(c.operation, c.outcome))
		if got != c.want {
			t.Errorf("%s/%s = %v, expected %v", c.operation, c.outcome, got, c.want)
		}
	}
}

func TestInvalidationHookWithInvalidator(t *testing.T) {
	store, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"dish_1", "dish_2", "dish_3"} {
		if _, err := store.GetOrFetch(ctx, key, func(ctx context.Context) (int, error) { return 1, nil }); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	m := New()
	invalidator := cache.NewInvalidator(store, cache.WithInvalidationHook(m.InvalidationHook()))
	if _, err := invalidator.Narrow(ctx, "dish", 1); err != nil {
		t.Fatalf("narrow: %v", err)
	}
	if _, err := invalidator.Broad(ctx, "dish"); err != nil {
		t.Fatalf("broad: %v", err)
	}

	if got := testutil.ToFloat64(m.invalidatedKeys.WithLabelValues(PatternNarrow)); got != 1 {
		t.Errorf("narrow keys = %v, expected 1", got)
	}
	if got := testutil.ToFloat64(m.invalidatedKeys.WithLabelValues(PatternBroad)); got != 2 {
		t.Errorf("broad keys = %v, expected 2", got)
	}

	m.InvalidationHook()(ctx, "dish_*", 0, errors.New("down"))
	if got := testutil.ToFloat64(m.invalidationErrors.WithLabelValues(PatternBroad)); got != 1 {
		t.Errorf("errors = %v, expected 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.StampHook()(context.Background(), "dish.Create", audit.Result{
		Operation: audit.OperationCreate,
		Applied:   []audit.Slot{audit.SlotCreatedAt},
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `audit_stamps_total{operation="CREATE",outcome="stamped"} 1`) {
		t.Errorf("missing counter in output:\n%s", rec.Body.String())
	}
}
