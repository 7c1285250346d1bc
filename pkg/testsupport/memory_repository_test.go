package testsupport

import (
	"context"
	"errors"
	"testing"
)

func newDishRepo() *MemoryRepository[*fixtureDish] {
	return NewMemoryRepository(func(d *fixtureDish) string { return d.ID })
}

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newDishRepo()

	if _, err := repo.Create(ctx, &fixtureDish{ID: "1", Name: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateMany(ctx, []*fixtureDish{{ID: "2"}, {ID: "3"}}); err != nil {
		t.Fatalf("create many: %v", err)
	}

	got, err := repo.GetByID(ctx, "1")
	if err != nil || got.Name != "a" {
		t.Fatalf("unexpected get %+v %v", got, err)
	}

	if _, err := repo.Update(ctx, &fixtureDish{ID: "1", Name: "b"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetByID(ctx, "1")
	if got.Name != "b" {
		t.Errorf("expected updated name, got %q", got.Name)
	}

	if err := repo.Delete(ctx, &fixtureDish{ID: "2"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records, total, _ := repo.List(ctx)
	if total != 2 || records[0].ID != "1" || records[1].ID != "3" {
		t.Errorf("unexpected records %v", records)
	}

	if _, err := repo.GetByID(ctx, "2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if repo.CallCount("GetByID") != 3 {
		t.Errorf("expected 3 GetByID calls, got %d", repo.CallCount("GetByID"))
	}
}

func TestMemoryRepository_FailOn(t *testing.T) {
	ctx := context.Background()
	repo := newDishRepo()
	want := errors.New("constraint violation")

	repo.FailOn("Create", want)
	if _, err := repo.Create(ctx, &fixtureDish{ID: "1"}); !errors.Is(err, want) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if len(repo.Records()) != 0 {
		t.Error("failed create must not store the record")
	}

	repo.FailOn("Create", nil)
	if _, err := repo.Create(ctx, &fixtureDish{ID: "1"}); err != nil {
		t.Errorf("unexpected error after clearing: %v", err)
	}
}
