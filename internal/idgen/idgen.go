// Package idgen generates export snapshot identifiers backed by nanoid.
package idgen

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// SnapshotPrefix is prepended to every snapshot ID.
const SnapshotPrefix = "snap-"

// Alphabet defines the character set used for the random suffix.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Length is the number of random characters in the suffix.
const Length = 8

const stampLayout = "20060102T150405"

// Snapshot returns an ID for a snapshot taken at t, shaped
// snap-<YYYYMMDDTHHMMSS>-<random>. IDs taken in different seconds sort by
// time; the suffix separates snapshots taken within the same second.
func Snapshot(t time.Time) (string, error) {
	suffix, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return SnapshotPrefix + t.UTC().Format(stampLayout) + "-" + suffix, nil
}

// SnapshotTime extracts the timestamp encoded in a snapshot ID.
func SnapshotTime(id string) (time.Time, error) {
	if len(id) < len(SnapshotPrefix)+len(stampLayout) || id[:len(SnapshotPrefix)] != SnapshotPrefix {
		return time.Time{}, fmt.Errorf("idgen: %q is not a snapshot id", id)
	}
	stamp := id[len(SnapshotPrefix) : len(SnapshotPrefix)+len(stampLayout)]
	t, err := time.ParseInLocation(stampLayout, stamp, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("idgen: parse %q: %w", id, err)
	}
	return t, nil
}
