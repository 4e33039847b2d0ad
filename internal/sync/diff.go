// Package sync reconciles remote collections against the local cache with
// an ordered merge-diff: both sides sorted by identity, walked in lock-step,
// and the resulting steps applied in one store transaction.
package sync

import (
	"cmp"
	"slices"
)

// Op is the kind of one diff step.
type Op int

const (
	OpInsert Op = iota // identity only on the remote side
	OpUpdate           // identity on both sides
	OpDelete           // identity only on the local side
)

// Step is one reconciliation action. Local is set for updates and deletes,
// Remote for inserts and updates. An update carries Changed=false when the
// compared fields already agree; appliers skip those, so re-running a sync
// against an unchanged remote performs no writes.
type Step[T any] struct {
	Op      Op
	Local   T
	Remote  T
	Changed bool
}

// Diff walks two collections sorted by identity and emits the steps that
// turn local into remote. Both inputs are sorted defensively before the
// walk; server ordering is not trusted. O(n+m) after sorting.
func Diff[T any, K cmp.Ordered](local, remote []T, key func(T) K, equal func(a, b T) bool) []Step[T] {
	l := slices.Clone(local)
	r := slices.Clone(remote)
	byKey := func(a, b T) int { return cmp.Compare(key(a), key(b)) }
	slices.SortFunc(l, byKey)
	slices.SortFunc(r, byKey)

	steps := make([]Step[T], 0, max(len(l), len(r)))
	i, j := 0, 0
	for i < len(l) && j < len(r) {
		switch cmp.Compare(key(l[i]), key(r[j])) {
		case -1:
			steps = append(steps, Step[T]{Op: OpDelete, Local: l[i]})
			i++
		case 1:
			steps = append(steps, Step[T]{Op: OpInsert, Remote: r[j]})
			j++
		default:
			steps = append(steps, Step[T]{Op: OpUpdate, Local: l[i], Remote: r[j], Changed: !equal(l[i], r[j])})
			i++
			j++
		}
	}
	for ; i < len(l); i++ {
		steps = append(steps, Step[T]{Op: OpDelete, Local: l[i]})
	}
	for ; j < len(r); j++ {
		steps = append(steps, Step[T]{Op: OpInsert, Remote: r[j]})
	}
	return steps
}

// Counts summarizes the applied steps of one collection sync.
type Counts struct {
	Inserted  int
	Updated   int
	Deleted   int
	Unchanged int
}

// Mutations is the number of steps that touch the database.
func (c Counts) Mutations() int {
	return c.Inserted + c.Updated + c.Deleted
}

func countSteps[T any](steps []Step[T]) Counts {
	var c Counts
	for _, s := range steps {
		switch s.Op {
		case OpInsert:
			c.Inserted++
		case OpDelete:
			c.Deleted++
		case OpUpdate:
			if s.Changed {
				c.Updated++
			} else {
				c.Unchanged++
			}
		}
	}
	return c
}
