package sync

// orderedSet tracks insertion order for merge keys so the snapshot stays
// deterministic across runs.
type orderedSet[T any] struct {
	order  []string
	values map[string]T
}

func newOrderedSet[T any]() *orderedSet[T] {
	return &orderedSet[T]{values: map[string]T{}}
}

// upsert overwrites any prior value for id while preserving the position the
// id was first inserted at.
func (s *orderedSet[T]) upsert(id string, value T) {
	if _, seen := s.values[id]; !seen {
		s.order = append(s.order, id)
	}
	s.values[id] = value
}

// remove drops the id entirely; a later upsert re-inserts it at the tail.
func (s *orderedSet[T]) remove(id string) {
	if _, seen := s.values[id]; !seen {
		return
	}
	delete(s.values, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *orderedSet[T]) slice() []T {
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.values[id])
	}
	return out
}

// Merge folds an ordered sequence of sync delta pages into one snapshot.
//
// Within a page, upserts apply before deletions, so an id present in both
// lists ends up deleted. Across pages, a later upsert overwrites the stored
// value for an id (keeping its first-seen position) and resurrects ids a
// previous page tombstoned. The operation is idempotent: folding the same
// page twice yields the same snapshot as folding it once.
func Merge(pages []Page) Snapshot {
	entries := newOrderedSet[Entry]()
	assets := newOrderedSet[Asset]()
	deletedEntries := newOrderedSet[string]()
	deletedAssets := newOrderedSet[string]()

	for _, page := range pages {
		for _, entry := range page.Entries {
			entries.upsert(entry.Sys.ID, entry)
			deletedEntries.remove(entry.Sys.ID)
		}
		for _, asset := range page.Assets {
			assets.upsert(asset.Sys.ID, asset)
			deletedAssets.remove(asset.Sys.ID)
		}
		for _, tombstone := range page.DeletedEntries {
			entries.remove(tombstone.Sys.ID)
			deletedEntries.upsert(tombstone.Sys.ID, tombstone.Sys.ID)
		}
		for _, tombstone := range page.DeletedAssets {
			assets.remove(tombstone.Sys.ID)
			deletedAssets.upsert(tombstone.Sys.ID, tombstone.Sys.ID)
		}
	}

	return Snapshot{
		Entries:         entries.slice(),
		Assets:          assets.slice(),
		DeletedEntryIDs: deletedEntries.slice(),
		DeletedAssetIDs: deletedAssets.slice(),
	}
}
