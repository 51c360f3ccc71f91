// Package registry holds the process-wide set of loaded connector
// descriptors. Readers always observe a whole, immutable snapshot; a
// reload builds a fresh snapshot and swaps it atomically.
package registry

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/connector-hub/connector-hub/internal/descriptor"
)

// Document is one raw descriptor source handed to a load.
type Document struct {
	Source string // file name or asset path, for error reporting
	Raw    []byte
}

// Failure records one document that could not join the snapshot.
type Failure struct {
	Source    string
	UniqueKey string // empty when the document did not parse far enough
	Err       error
}

// Report summarizes one load pass.
type Report struct {
	Loaded   []string
	Retained []string // keys kept from the previous snapshot after a failed replacement
	Failures []Failure
}

// OK reports whether every document joined the snapshot.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

type snapshot struct {
	byKey map[string]*descriptor.Descriptor
	order []string
}

var emptySnapshot = &snapshot{byKey: map[string]*descriptor.Descriptor{}}

// Registry is safe for concurrent use. Descriptors are never mutated
// after publication, so readers need no locking beyond the snapshot
// pointer load.
type Registry struct {
	current atomic.Pointer[snapshot]
}

func New() *Registry {
	r := &Registry{}
	r.current.Store(emptySnapshot)
	return r
}

// Load parses and validates every document and swaps in the resulting
// snapshot. Failure isolation is per descriptor: a bad document is
// reported and skipped, and when its uniqueKey is recoverable the
// previous snapshot's entry for that key is carried forward, so an
// operator pushing one broken descriptor does not unload a working
// connector. Duplicate uniqueKeys within one load are rejected.
func (r *Registry) Load(docs []Document) Report {
	prev := r.current.Load()
	next := &snapshot{byKey: make(map[string]*descriptor.Descriptor, len(docs))}
	var report Report

	fail := func(doc Document, key string, err error) {
		report.Failures = append(report.Failures, Failure{Source: doc.Source, UniqueKey: key, Err: err})
		if key == "" {
			return
		}
		if old, ok := prev.byKey[key]; ok {
			if _, taken := next.byKey[key]; !taken {
				next.byKey[key] = old
				next.order = append(next.order, key)
				report.Retained = append(report.Retained, key)
			}
		}
	}

	for _, doc := range docs {
		d, err := descriptor.Parse(doc.Raw)
		if err != nil {
			fail(doc, "", err)
			continue
		}
		if err := d.Validate(); err != nil {
			fail(doc, d.UniqueKey, err)
			continue
		}
		if _, dup := next.byKey[d.UniqueKey]; dup {
			report.Failures = append(report.Failures, Failure{
				Source:    doc.Source,
				UniqueKey: d.UniqueKey,
				Err:       fmt.Errorf("uniqueKey %q already loaded in this pass", d.UniqueKey),
			})
			continue
		}
		next.byKey[d.UniqueKey] = d
		next.order = append(next.order, d.UniqueKey)
		report.Loaded = append(report.Loaded, d.UniqueKey)
	}

	r.current.Store(next)
	observeLoad(report, len(next.order))
	return report
}

// Get looks a descriptor up by uniqueKey.
func (r *Registry) Get(key string) (*descriptor.Descriptor, bool) {
	d, ok := r.current.Load().byKey[strings.TrimSpace(key)]
	return d, ok
}

// All returns the current snapshot's descriptors in load order.
func (r *Registry) All() []*descriptor.Descriptor {
	snap := r.current.Load()
	out := make([]*descriptor.Descriptor, 0, len(snap.order))
	for _, key := range snap.order {
		out = append(out, snap.byKey[key])
	}
	return out
}

// Len returns the number of descriptors in the current snapshot.
func (r *Registry) Len() int {
	return len(r.current.Load().order)
}
