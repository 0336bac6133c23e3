package dowse

// MergeAll folds records so that the earliest-yielded record's keys win;
// keys absent from earlier records fall through to later ones. N > 0 bounds
// the fold to the first N yielded records and stops pulling there, so
// unneeded sources are never read.
type MergeAll struct {
	N int
}

func (m MergeAll) Resolve(records RecordIter, _ Schema) (map[string]any, error) {
	out := make(map[string]any)
	seen := 0
	for m.N <= 0 || seen < m.N {
		rec, ok, err := records.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		seen++
		for k, v := range rec.Data {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}
	return out, nil
}

// FirstOnly uses only the first yielded record; later records are never
// pulled. An empty sequence resolves to an empty mapping.
type FirstOnly struct{}

func (FirstOnly) Resolve(records RecordIter, _ Schema) (map[string]any, error) {
	rec, ok, err := records.Next()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(rec.Data))
	if !ok {
		return out, nil
	}
	for k, v := range rec.Data {
		out[k] = v
	}
	return out, nil
}

// RecordPredicate selects records for FilteredMerge.
type RecordPredicate func(SourceRecord) bool

// KindIs matches records produced by the given kind of source.
func KindIs(kind SourceKind) RecordPredicate {
	return func(rec SourceRecord) bool {
		return rec.Meta.Kind == kind
	}
}

// FromLoader matches records produced by the named loader.
func FromLoader(name string) RecordPredicate {
	return func(rec SourceRecord) bool {
		return rec.Meta.Loader == name
	}
}

// FilteredMerge keeps the first record matching each predicate in Keep, then
// merges the retained records with MergeAll semantics. Scanning stops as soon
// as every predicate has matched.
type FilteredMerge struct {
	Keep []RecordPredicate
}

func (f FilteredMerge) Resolve(records RecordIter, schema Schema) (map[string]any, error) {
	kept := make([]SourceRecord, 0, len(f.Keep))
	matched := make([]bool, len(f.Keep))
	remaining := len(f.Keep)

	for remaining > 0 {
		rec, ok, err := records.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		retain := false
		for i, pred := range f.Keep {
			if !matched[i] && pred(rec) {
				matched[i] = true
				remaining--
				retain = true
			}
		}
		if retain {
			kept = append(kept, rec)
		}
	}

	return MergeAll{}.Resolve(Records(kept...), schema)
}
