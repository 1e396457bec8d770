package idgen

import (
	"regexp"
	"sort"
	"testing"
	"time"
)

var snapshotPattern = regexp.MustCompile(`^snap-\d{8}T\d{6}-[0-9a-z]{8}$`)

func TestSnapshot_Shape(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 5, 0, time.UTC)
	id, err := Snapshot(ts)
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if !snapshotPattern.MatchString(id) {
		t.Fatalf("Snapshot() = %q, does not match %s", id, snapshotPattern)
	}
	if id[:len("snap-20240301T093005")] != "snap-20240301T093005" {
		t.Errorf("Snapshot() = %q, want stamp 20240301T093005", id)
	}
}

func TestSnapshot_NormalizesToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	id, err := Snapshot(time.Date(2024, 3, 1, 4, 30, 5, 0, est))
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	got, err := SnapshotTime(id)
	if err != nil {
		t.Fatalf("SnapshotTime(%q) error: %v", id, err)
	}
	want := time.Date(2024, 3, 1, 9, 30, 5, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("SnapshotTime = %v, want %v", got, want)
	}
}

func TestSnapshot_UniqueWithinSecond(t *testing.T) {
	const count = 10_000
	ts := time.Now()
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := Snapshot(ts)
		if err != nil {
			t.Fatalf("Snapshot() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestSnapshot_SortsByTime(t *testing.T) {
	base := time.Date(2024, 12, 31, 23, 59, 58, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := Snapshot(base.Add(time.Duration(i) * time.Second))
		if err != nil {
			t.Fatalf("Snapshot() error: %v", err)
		}
		ids = append(ids, id)
	}
	if !sort.StringsAreSorted(ids) {
		t.Fatalf("ids not sorted by time: %v", ids)
	}
}

func TestSnapshotTime_Invalid(t *testing.T) {
	for _, id := range []string{"", "snap-", "bd-20240301T093005-abc", "snap-2024-03-01-abcdefgh"} {
		if _, err := SnapshotTime(id); err == nil {
			t.Errorf("SnapshotTime(%q) expected error", id)
		}
	}
}
