// Package pipeline orchestrates one ingestion event: match codes in a text
// blob, drop identities the global registry already holds, derive
// denominations and validity from surrounding context, and commit what's
// left to the submitting user's store. Codes the live-chat path cannot price
// are parked per user until a single denomination choice resolves the whole
// batch.
//
// All registry-touching work runs under one mutex. Claim is not
// compare-and-swap, so two interleaved batches could both observe a code as
// unclaimed and claim it for different owners; serializing match→classify→
// commit closes that race. Pending selections are guarded separately — they
// never touch the registry until resolved.
package pipeline

import (
	"errors"
	"sync"

	"github.com/corey/redeembot/internal/domain/code"
	"github.com/corey/redeembot/internal/ports"
)

// Source identifies where an ingested blob came from. Batch sources (paste,
// PDF, plain text dumps) store an unknown denomination as N/A directly; the
// live-chat source parks such codes for a manual choice instead.
type Source int

const (
	SourceText Source = iota
	SourcePaste
	SourcePDF
	SourceChat
)

// interactive reports whether missing denominations pause for a user choice.
func (s Source) interactive() bool { return s == SourceChat }

// ErrNoPending is returned by Resolve when the user has no parked batch.
var ErrNoPending = errors.New("no pending codes")

// Duplicate is a code that was rejected because its identity is already
// claimed. Key is the normalized identity (the display form the bot reports);
// Owner is who claimed it first.
type Duplicate struct {
	Key   string
	Owner int64
}

// Result is the outcome of one ingestion event.
type Result struct {
	Stored     []ports.Record // records submitted to the user's store
	Saved      int            // how many of Stored were newly appended
	Duplicates []Duplicate    // identities already claimed, first-seen order
	Pending    []string       // chat-only: codes parked for a denomination choice
}

// Empty reports whether the blob contained no codes at all. Not an error —
// callers report it as an informational outcome.
func (r *Result) Empty() bool {
	return len(r.Stored) == 0 && len(r.Duplicates) == 0 && len(r.Pending) == 0
}

// Pipeline runs ingestion events against a single shared registry/store.
type Pipeline struct {
	mu    sync.Mutex // serializes match→classify→commit against the registry
	store ports.Storage

	pendMu  sync.Mutex
	pending map[int64][]string // owner → codes awaiting a denomination choice
}

// New creates a Pipeline committing to store.
func New(store ports.Storage) *Pipeline {
	return &Pipeline{
		store:   store,
		pending: make(map[int64][]string),
	}
}

// Ingest processes blob submitted by owner from the given source. Duplicate
// identities within the blob itself collapse to their first occurrence.
// Storage failure mid-batch leaves earlier commits in place; the error is
// surfaced to the caller.
func (p *Pipeline) Ingest(owner int64, blob string, src Source) (*Result, error) {
	matches := code.Find(blob)
	res := &Result{}
	if len(matches) == 0 {
		return res, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		commit []ports.Record
		parked []string
		seen   = make(map[string]bool, len(matches))
	)

	for _, m := range matches {
		key := code.Normalize(m.Code)
		if seen[key] {
			continue
		}
		seen[key] = true

		claimer, claimed, err := p.store.Owner(m.Code)
		if err != nil {
			return nil, err
		}
		if claimed {
			res.Duplicates = append(res.Duplicates, Duplicate{Key: key, Owner: claimer})
			continue
		}

		ctx := code.ExtractContext(blob, m.Start, m.End)
		if src.interactive() && ctx.Denomination == code.NA {
			if denom, ok := code.DetectDenomination(blob, m.Start, m.End); ok {
				ctx.Denomination = denom
			} else {
				parked = append(parked, m.Code)
				continue
			}
		}
		commit = append(commit, ports.Record{
			Code:         m.Code,
			Denomination: ctx.Denomination,
			Validity:     ctx.Validity,
		})
	}

	if len(commit) > 0 {
		n, err := p.store.Append(owner, commit)
		if err != nil {
			return nil, err
		}
		res.Stored = commit
		res.Saved = n
	}

	if src.interactive() && len(parked) > 0 {
		res.Pending = parked
		p.pendMu.Lock()
		// Last detection wins: a newer batch replaces any prior one.
		p.pending[owner] = parked
		p.pendMu.Unlock()
	}

	return res, nil
}

// Resolve consumes owner's entire pending batch, committing every parked
// code under the chosen denomination. The batch is consumed exactly once:
// a second Resolve without a new detection returns ErrNoPending.
func (p *Pipeline) Resolve(owner int64, denomination string) (*Result, error) {
	p.pendMu.Lock()
	parked, ok := p.pending[owner]
	delete(p.pending, owner)
	p.pendMu.Unlock()
	if !ok {
		return nil, ErrNoPending
	}

	records := make([]ports.Record, 0, len(parked))
	for _, c := range parked {
		records = append(records, ports.Record{
			Code:         c,
			Denomination: denomination,
			Validity:     code.NA,
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.store.Append(owner, records)
	if err != nil {
		return nil, err
	}
	return &Result{Stored: records, Saved: n}, nil
}

// HasPending reports whether owner has a parked batch.
func (p *Pipeline) HasPending(owner int64) bool {
	p.pendMu.Lock()
	defer p.pendMu.Unlock()
	_, ok := p.pending[owner]
	return ok
}
