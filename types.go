package dowse

import (
	"context"
	"fmt"
	"strings"
)

// Namespace locates a tool's configuration inside hierarchical sources.
// The first element names the tool (and its dedicated config files); deeper
// elements select nested tables inside files and extend env var prefixes.
// A Namespace is fixed once a Loader is built.
type Namespace []string

// Validate reports namespace misuse. Called by loader constructors.
func (ns Namespace) Validate() error {
	if len(ns) == 0 {
		return ErrEmptyNamespace
	}
	for _, elem := range ns {
		if strings.TrimSpace(elem) == "" {
			return ErrBlankNamespaceElement
		}
	}
	return nil
}

// String returns the namespace as a dotted path (e.g., "mytool.subcmd").
func (ns Namespace) String() string {
	return strings.Join(ns, ".")
}

// SourceKind tags a SourceRecord with the kind of source that produced it.
// Filtered-merge predicates match on this tag.
type SourceKind int

const (
	KindUnknown SourceKind = iota
	KindEnvironment
	KindFile
	KindValues
)

func (k SourceKind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindFile:
		return "file"
	case KindValues:
		return "values"
	default:
		return "unknown"
	}
}

// Metadata describes where a SourceRecord came from.
type Metadata struct {
	Kind   SourceKind
	Loader string // Loader.Name() of the producer
	Path   string // File path for file-derived records, otherwise empty
}

// SourceRecord is one (data, metadata) pair yielded by a Loader.
// Records are ephemeral: they exist only during one resolution pass.
type SourceRecord struct {
	Data map[string]any
	Meta Metadata
}

// RecordIter lazily yields SourceRecords. Consumers may stop pulling at any
// point (first-only and bounded merges halt source I/O early). Iteration is
// not restartable; re-invoke the Loader for a fresh pass.
type RecordIter interface {
	// Next returns the next record. The second result is false once the
	// sequence is exhausted. A non-nil error aborts the resolution pass.
	Next() (SourceRecord, bool, error)
}

// Loader produces a finite sequence of SourceRecords from one external
// source. Loaders are stateless between calls and reusable; the schema lets
// them coerce raw values to declared field types.
type Loader interface {
	Load(ctx context.Context, schema Schema) RecordIter
	// Name identifies the loader in record metadata and error messages.
	Name() string
}

// Resolver folds an ordered record sequence into one flat mapping.
// Precedence depends only on yield order, never on key content.
type Resolver interface {
	Resolve(records RecordIter, schema Schema) (map[string]any, error)
}

// Records returns an iterator over the given records, in order.
func Records(records ...SourceRecord) RecordIter {
	return &sliceIter{records: records}
}

// ErrorRecords returns an iterator that fails immediately with err.
func ErrorRecords(err error) RecordIter {
	return &errorIter{err: err}
}

type sliceIter struct {
	records []SourceRecord
	pos     int
}

func (it *sliceIter) Next() (SourceRecord, bool, error) {
	if it.pos >= len(it.records) {
		return SourceRecord{}, false, nil
	}
	rec := it.records[it.pos]
	it.pos++
	return rec, true, nil
}

type errorIter struct {
	err  error
	done bool
}

func (it *errorIter) Next() (SourceRecord, bool, error) {
	if it.done {
		return SourceRecord{}, false, nil
	}
	it.done = true
	return SourceRecord{}, false, it.err
}

// chainIter concatenates loader output sequences in declared order.
type chainIter struct {
	iters []RecordIter
	pos   int
}

func (it *chainIter) Next() (SourceRecord, bool, error) {
	for it.pos < len(it.iters) {
		rec, ok, err := it.iters[it.pos].Next()
		if err != nil {
			return SourceRecord{}, false, fmt.Errorf("load records: %w", err)
		}
		if ok {
			return rec, true, nil
		}
		it.pos++
	}
	return SourceRecord{}, false, nil
}
