package tracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/config"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/extract"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/fingerprint"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/relevance"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/snapshot"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/summarizer"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/updatelog"
)

// Snapshot categories on disk.
const (
	CategoryPlatforms = "platforms"
	CategoryPolicy    = "policy"
)

// Fetcher retrieves raw document content for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Outcome is the terminal state reached for one URL in one run.
type Outcome string

const (
	// OutcomeUnchanged: fingerprint matched the stored one, nothing written.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeRecorded: change detected, record appended, snapshot committed.
	OutcomeRecorded Outcome = "recorded"
	// OutcomeSnapshotOnly: change detected but no record landed, either
	// because the relevance gate rejected it or the log write failed (Err
	// set); the snapshot still advanced so detection does not re-fire.
	OutcomeSnapshotOnly Outcome = "snapshot-only"
	// OutcomeFailed: fetch or persistence failed; no state written.
	OutcomeFailed Outcome = "failed"
)

// Result is the outcome for a single (source, url) pair.
type Result struct {
	Source  string
	URL     string
	Outcome Outcome
	Err     error
}

// Report aggregates per-URL results for one run.
type Report struct {
	Results []Result
}

func (r *Report) count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int { return r.count(OutcomeFailed) }

func (r *Report) Summary() string {
	return fmt.Sprintf("%d checked: %d unchanged, %d recorded, %d snapshot-only, %d failed",
		len(r.Results), r.count(OutcomeUnchanged), r.count(OutcomeRecorded),
		r.count(OutcomeSnapshotOnly), r.Failed())
}

// Tracker runs the fetch -> fingerprint -> compare -> summarize -> record
// pipeline over the configured sources, strictly sequentially and in
// declared order. A failure for one URL never aborts the run.
type Tracker struct {
	fetcher     Fetcher
	summarizer  summarizer.Summarizer
	snapshots   *snapshot.Store
	platformLog *updatelog.Log
	policyLog   *updatelog.Log
	platforms   []config.Source
	policy      []config.Source
	now         func() time.Time
}

func New(f Fetcher, s summarizer.Summarizer, snaps *snapshot.Store,
	platformLog, policyLog *updatelog.Log, platforms, policy []config.Source) *Tracker {
	return &Tracker{
		fetcher:     f,
		summarizer:  s,
		snapshots:   snaps,
		platformLog: platformLog,
		policyLog:   policyLog,
		platforms:   platforms,
		policy:      policy,
		now:         time.Now,
	}
}

// Run executes the full pipeline once and returns the per-URL report.
func (t *Tracker) Run(ctx context.Context) *Report {
	report := &Report{}

	log.Printf("Checking %d platform sources...", len(t.platforms))
	t.runSources(ctx, report, t.platforms, updatelog.KindPlatform)

	log.Printf("Checking %d policy sources...", len(t.policy))
	t.runSources(ctx, report, t.policy, updatelog.KindPolicy)

	log.Printf("Run complete: %s", report.Summary())
	return report
}

func (t *Tracker) runSources(ctx context.Context, report *Report, sources []config.Source, kind updatelog.Kind) {
	for _, src := range sources {
		for _, u := range src.URLs {
			res := t.processURL(ctx, src.Name, u, kind)
			if res.Err != nil {
				log.Printf("WARNING: %s %s: %v", src.Name, u, res.Err)
			} else {
				log.Printf("%s %s: %s", src.Name, u, res.Outcome)
			}
			report.Results = append(report.Results, res)
		}
	}
}

func (t *Tracker) processURL(ctx context.Context, name, url string, kind updatelog.Kind) Result {
	res := Result{Source: name, URL: url}

	body, err := t.fetcher.Fetch(ctx, url)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	digest := fingerprint.Digest(body)
	category := categoryFor(kind)
	key := snapshot.Key(name, url)

	if prior, ok := t.snapshots.PriorDigest(category, key); ok && prior == digest {
		res.Outcome = OutcomeUnchanged
		return res
	}

	text := extract.Text(body)
	prevRaw, hasPrev := t.snapshots.PriorContent(category, key)

	req := summarizer.Request{
		SourceName:  name,
		URL:         url,
		Content:     text,
		HasPrevious: hasPrev,
	}
	if hasPrev {
		req.Previous = extract.Text([]byte(prevRaw))
	}
	summary := t.summarizer.Summarize(ctx, req)

	// Policy changes are reported only when the page or the summary
	// mentions a tracked term. The snapshot advances either way.
	report := true
	if kind == updatelog.KindPolicy && !relevance.IsRelevant(text) && !relevance.IsRelevant(summary) {
		report = false
	}

	var appendErr error
	if report {
		rec := updatelog.NewRecord(kind, name, url, recordTitle(name, url, hasPrev), summary, t.now())
		if appendErr = t.logFor(kind).Append(rec); appendErr != nil {
			// Previous on-disk log state is intact; keep going.
			log.Printf("WARNING: %s %s: %v", name, url, appendErr)
		}
	}

	if err := t.snapshots.Commit(category, key, body, digest); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if report && appendErr == nil {
		res.Outcome = OutcomeRecorded
	} else {
		// No record landed: relevance-gated, or the append failed.
		res.Outcome = OutcomeSnapshotOnly
		res.Err = appendErr
	}
	return res
}

func (t *Tracker) logFor(kind updatelog.Kind) *updatelog.Log {
	if kind == updatelog.KindPolicy {
		return t.policyLog
	}
	return t.platformLog
}

func categoryFor(kind updatelog.Kind) string {
	if kind == updatelog.KindPolicy {
		return CategoryPolicy
	}
	return CategoryPlatforms
}

func recordTitle(name, url string, hasPrev bool) string {
	tail := snapshot.URLTail(url)
	if !hasPrev {
		return fmt.Sprintf("Now tracking %s: %s", name, tail)
	}
	return fmt.Sprintf("%s: %s updated", name, tail)
}
