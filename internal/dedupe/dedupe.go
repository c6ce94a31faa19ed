package dedupe

// Package dedupe provides shared singleflight groups used to collapse
// redundant in-process triggers. The database conditional updates remain
// the correctness primitive; singleflight only saves duplicate work when
// both submissions land on the same process.

import "golang.org/x/sync/singleflight"

// ResolveGroup deduplicates concurrent round-resolution triggers keyed by
// the canonical round key (see keys.RoundKey).
var ResolveGroup singleflight.Group

// TimeoutGroup deduplicates concurrent deadline-enforcement triggers (the
// client-driven timer racing the periodic sweeper) keyed per round.
var TimeoutGroup singleflight.Group
