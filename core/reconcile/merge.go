package reconcile

import (
	"bytes"
	"sort"

	"region-sync/core/record"

	"github.com/google/uuid"
)

// regionIndex is one region's rows keyed by id, as read at the start of a run.
type regionIndex struct {
	label string
	rows  map[uuid.UUID]record.Record
	err   error
}

func (idx regionIndex) reachable() bool {
	return idx.err == nil
}

// buildIndex keys rows by id. Should a store return the same id twice,
// the newer version is kept.
func buildIndex(label string, rows []record.Record) regionIndex {
	index := make(map[uuid.UUID]record.Record, len(rows))
	for _, rec := range rows {
		if current, ok := index[rec.ID]; ok && !rec.NewerThan(current) {
			continue
		}
		index[rec.ID] = rec
	}
	return regionIndex{label: label, rows: index}
}

// buildUnion returns every id held by a reachable region, sorted for deterministic output.
func buildUnion(indexes []regionIndex) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	for _, idx := range indexes {
		if !idx.reachable() {
			continue
		}
		for id := range idx.rows {
			seen[id] = struct{}{}
		}
	}

	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// candidate is one region's version of an id.
type candidate struct {
	source string
	rec    record.Record
}

// collectCandidates returns the versions of id held by reachable regions, in region order.
func collectCandidates(id uuid.UUID, indexes []regionIndex) []candidate {
	var candidates []candidate
	for _, idx := range indexes {
		if !idx.reachable() {
			continue
		}
		if rec, ok := idx.rows[id]; ok {
			candidates = append(candidates, candidate{source: idx.label, rec: rec})
		}
	}
	return candidates
}

// selectWinner returns the candidate with the greatest UpdatedAt.
// On equal timestamps the earliest region in priority order wins.
func selectWinner(candidates []candidate) candidate {
	winner := candidates[0]
	for _, c := range candidates[1:] {
		if c.rec.NewerThan(winner.rec) {
			winner = c
		}
	}
	return winner
}

// planActions computes every propagation needed to bring reachable regions
// up to the winning version of each id. It returns the actions and the union size.
func planActions(indexes []regionIndex) ([]Action, int) {
	ids := buildUnion(indexes)

	var actions []Action
	for _, id := range ids {
		candidates := collectCandidates(id, indexes)
		if len(candidates) == 0 {
			continue
		}
		winner := selectWinner(candidates)

		for _, idx := range indexes {
			if !idx.reachable() {
				continue
			}

			current, ok := idx.rows[id]
			var reason Reason
			switch {
			case !ok:
				reason = ReasonMissing
			case current.UpdatedAt.Before(winner.rec.UpdatedAt):
				reason = ReasonStale
			default:
				continue
			}

			actions = append(actions, Action{
				ID:     id,
				Target: idx.label,
				Source: winner.source,
				Reason: reason,
				Record: winner.rec.CloneFor(idx.label),
			})
		}
	}

	return actions, len(ids)
}

// summarize builds a PlanSummary over actions.
func summarize(actions []Action, total int) PlanSummary {
	summary := PlanSummary{
		TotalRecords: total,
		Propagations: len(actions),
		ByRegion:     make(map[string]int),
	}
	for _, a := range actions {
		summary.ByRegion[a.Target]++
		switch a.Reason {
		case ReasonMissing:
			summary.Missing++
		case ReasonStale:
			summary.Stale++
		}
		if a.Record.Deleted {
			summary.Tombstones++
		}
	}
	return summary
}

// groupByTarget splits actions per target region, preserving order.
func groupByTarget(actions []Action) map[string][]Action {
	groups := make(map[string][]Action)
	for _, a := range actions {
		groups[a.Target] = append(groups[a.Target], a)
	}
	return groups
}
