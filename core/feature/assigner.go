// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package feature

import (
	"hash/fnv"
	"maps"
	"slices"
)

// Rule is the configured rollout of one flag.
type Rule struct {
	// Value is assigned to viewers inside the rollout.
	Value string `yaml:"value"`
	// RolloutPercent is the share of viewers, 0 to 100, that receive Value.
	// Viewers outside the rollout receive the feature's default.
	RolloutPercent int `yaml:"rolloutPercent"`
}

// Assigner resolves assignments from configured rules and viewer overrides.
type Assigner struct {
	rules          map[string]Rule
	allowOverrides bool
}

// Default is the process-wide Assigner, set at startup.
var Default = NewAssigner(nil, false)

// NewAssigner returns an Assigner for rules. Overrides are ignored unless allowOverrides is set.
func NewAssigner(rules map[string]Rule, allowOverrides bool) *Assigner {
	return &Assigner{
		rules:          maps.Clone(rules),
		allowOverrides: allowOverrides,
	}
}

// Assign resolves every known flag for the viewer identified by subject.
//
// subject is the viewer ID for signed-in viewers and the device ID otherwise.
// Unknown flag IDs in rules or overrides are ignored.
func (a *Assigner) Assign(subject string, overrides map[string]string) Assignments {
	out := make(Assignments, len(registry))

	for _, id := range slices.Sorted(maps.Keys(registry)) {
		parse := registry[id]

		if a.allowOverrides {
			if raw, ok := overrides[id]; ok {
				if v, ok := parse(raw); ok {
					out[id] = v

					continue
				}
			}
		}

		rule, ok := a.rules[id]
		if !ok {
			continue
		}

		raw := ""
		if inRollout(id, subject, rule.RolloutPercent) {
			raw = rule.Value
		}

		if v, ok := parse(raw); ok {
			out[id] = v
		}
	}

	return out
}

// inRollout buckets subject into 0..99 by hashing it with the flag ID.
//
// The same subject always lands in the same bucket for a given flag.
func inRollout(id, subject string, percent int) bool {
	if percent >= 100 {
		return true
	}

	if percent <= 0 {
		return false
	}

	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(id + ":" + subject))

	return int(hasher.Sum32()%100) < percent
}
