package normalize

import (
	"github.com/workstory/contentful-source/sync"
)

// EntryList holds the merged entries grouped per content type, parallel to
// the content type list it was built from.
type EntryList [][]sync.Entry

// BuildEntryList groups the snapshot's entries by content type, preserving
// snapshot order inside each group. Entries whose content type is not part
// of the schema list are skipped; that is normal for filtered or partially
// synced spaces.
func BuildEntryList(snapshot sync.Snapshot, contentTypes []sync.ContentType) EntryList {
	positions := make(map[string]int, len(contentTypes))
	for i, contentType := range contentTypes {
		positions[contentType.Sys.ID] = i
	}

	grouped := make(EntryList, len(contentTypes))
	for _, entry := range snapshot.Entries {
		position, known := positions[entry.ContentTypeID()]
		if !known {
			continue
		}
		grouped[position] = append(grouped[position], entry)
	}
	return grouped
}
