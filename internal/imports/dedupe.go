package imports

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint returns a stable SHA-256 digest of the candidate's full
// normalized payload. Two rows with equal fingerprints carried identical
// field values after normalization.
func Fingerprint(c *Candidate) string {
	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}

	sort.Strings(names)

	var builder strings.Builder

	for _, name := range names {
		builder.WriteString(name)
		builder.WriteByte('=')
		builder.WriteString(c.Fields[name])
		builder.WriteByte('\n')
	}

	digest := sha256.Sum256([]byte(builder.String()))

	return hex.EncodeToString(digest[:])
}

// deduplicate runs the two detection passes over rows that passed validation.
//
// Pass 1 drops intra-batch exact duplicates silently: a row byte-identical to
// an earlier row is an idempotent re-upload artifact, not an error. Pass 2
// rejects business-key collisions as hard errors: the key matches either an
// earlier row in the batch with a different payload, or a record already in
// the snapshot. Exact-duplicate detection takes precedence, so a repeated row
// never reports a collision against its own first occurrence.
func deduplicate(strat Strategy, snap *Snapshot, valid []*Candidate) (kept []*Candidate, dropped int, errs []RowError) {
	persisted := strat.PersistedKeys(snap)
	seenPayloads := make(map[string]struct{}, len(valid))
	seenKeys := make(map[string]int, len(valid))
	kept = make([]*Candidate, 0, len(valid))

	for _, c := range valid {
		payload := Fingerprint(c)
		if _, exact := seenPayloads[payload]; exact {
			dropped++

			continue
		}

		seenPayloads[payload] = struct{}{}

		key := strat.BusinessKey(c)

		if _, exists := persisted[key]; exists {
			errs = append(errs, RowError{
				Row:     c.Row,
				Message: fmt.Sprintf("%s already exists", strat.DescribeBusinessKey(c, snap)),
			})

			continue
		}

		if firstRow, inBatch := seenKeys[key]; inBatch {
			errs = append(errs, RowError{
				Row:     c.Row,
				Message: fmt.Sprintf("%s conflicts with row %d", strat.DescribeBusinessKey(c, snap), firstRow),
			})

			continue
		}

		seenKeys[key] = c.Row
		kept = append(kept, c)
	}

	return kept, dropped, errs
}
