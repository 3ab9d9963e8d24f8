package index

import (
	"log/slog"

	"github.com/starford/decisionlog/internal/models"
)

// Sync brings the index for one kind in line with a freshly loaded
// collection:
//   - new/changed documents (by checksum) are upserted
//   - documents no longer in the collection are deleted
func Sync(db DocumentIndex, kind models.Kind, docs []models.Document, logger *slog.Logger) error {
	checksums, err := db.AllChecksums(kind)
	if err != nil {
		return err
	}

	current := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		h := d.Meta()
		current[h.Filename] = struct{}{}

		if cs, ok := checksums[h.Filename]; ok && cs == h.Checksum && h.Checksum != "" {
			continue
		}
		if err := db.UpsertDocument(d); err != nil {
			return err
		}
		logger.Debug("index: upserted", slog.String("kind", string(kind)), slog.String("file", h.Filename))
	}

	for name := range checksums {
		if _, ok := current[name]; ok {
			continue
		}
		if err := db.DeleteDocument(kind, name); err != nil {
			return err
		}
		logger.Debug("index: removed stale", slog.String("kind", string(kind)), slog.String("file", name))
	}

	return nil
}
