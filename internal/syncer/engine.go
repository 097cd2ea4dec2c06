// Package syncer implements the milestone date sync protocol: discover,
// extract, resolve, confirm, apply. Covers one issue pair or a whole project.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/pmtools/jiradates/internal/dates"
	"github.com/pmtools/jiradates/internal/fieldmap"
	"github.com/pmtools/jiradates/internal/jira"
	"github.com/pmtools/jiradates/internal/types"
)

// API is the slice of the tracker gateway the engine drives. All remote
// traffic goes through it, so tests can substitute a fake.
type API interface {
	Issue(ctx context.Context, key string) (*jira.Issue, error)
	Fields(ctx context.Context) ([]jira.Field, error)
	Search(ctx context.Context, jql string, startAt, maxResults int, fields string) (*jira.SearchResult, error)
	UpdateField(ctx context.Context, key, fieldID string, value any) error
}

// Confirmer asks the operator to approve an operation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Options control a sync operation.
type Options struct {
	DryRun bool
	Force  bool
}

// Engine runs the sync protocol. One engine serves one invocation; it owns
// its field catalog cache and is not safe for concurrent use.
type Engine struct {
	api     API
	catalog *fieldmap.Catalog
	sink    types.Sink
	confirm Confirmer

	// Verbose enables per-item detail during bulk runs.
	Verbose bool

	// Progress, when set, receives bulk progress updates for non-verbose
	// console rendering.
	Progress func(current, total int, item string)

	// BaseURL, when set, is used to render links to updated issues.
	BaseURL string

	sleep func(time.Duration)
}

// New returns an engine over the given gateway. A nil sink discards
// records; a nil confirmer declines everything (so non-forced syncs skip).
func New(api API, sink types.Sink, confirm Confirmer) *Engine {
	if sink == nil {
		sink = types.DiscardSink{}
	}
	if confirm == nil {
		confirm = ConfirmFunc(func(string) bool { return false })
	}
	return &Engine{
		api:     api,
		catalog: fieldmap.NewCatalog(api),
		sink:    sink,
		confirm: confirm,
		sleep:   time.Sleep,
	}
}

// SetSink replaces the engine's progress sink, e.g. to tee records into
// an execution log.
func (e *Engine) SetSink(s types.Sink) {
	if s != nil {
		e.sink = s
	}
}

func (e *Engine) emit(kind types.RecordKind, format string, args ...any) {
	e.sink.Emit(types.Record{Kind: kind, Text: fmt.Sprintf(format, args...)})
}

// Sync copies populated milestone dates from source to target.
//
// Partial success counts as success: the outcome is success when at least
// one field update went through, even if siblings failed. Each field's
// individual result is recorded on the returned SyncResult.
func (e *Engine) Sync(ctx context.Context, sourceKey, targetKey string, opts Options) (*types.SyncResult, error) {
	result := &types.SyncResult{Source: sourceKey, Target: targetKey, DryRun: opts.DryRun}

	source, errSrc := e.api.Issue(ctx, sourceKey)
	target, errTgt := e.api.Issue(ctx, targetKey)
	if errSrc != nil || errTgt != nil {
		e.emit(types.KindWarning, "Cannot access issues. Check issue keys.")
		result.Outcome = types.OutcomeSkipped
		result.Reason = "issues unreachable"
		return result, nil
	}

	mapping, err := e.catalog.Mapping(ctx)
	if err != nil {
		return nil, err
	}

	populated := dates.Extract(source, mapping)
	if len(populated) == 0 {
		e.emit(types.KindWarning, "No milestone dates in %s - skipping", sourceKey)
		result.Outcome = types.OutcomeSkipped
		result.Reason = "no milestone dates in source"
		return result, nil
	}

	targetStructured := dates.IsStructured(target)
	targetVariant := "Jira"
	if targetStructured {
		targetVariant = "JPD"
	}
	mode := "SYNC"
	if opts.DryRun {
		mode = "DRY RUN"
	}

	e.emit(types.KindHeader, "%s → %s (%s) [%s]", sourceKey, targetKey, targetVariant, mode)
	verb := "Copying"
	if opts.DryRun {
		verb = "Would copy"
	}
	e.emit(types.KindInfo, "%s %d dates:", verb, len(populated))
	for _, name := range fieldmap.TrackedFields {
		if field, ok := populated[name]; ok {
			e.emit(types.KindDetail, "%s: %s", name, dates.Display(field.Value))
		}
	}

	if opts.DryRun {
		e.preview(populated)
		result.Outcome = types.OutcomeSuccess
		return result, nil
	}

	if opts.Force {
		e.emit(types.KindInfo, "Skipping confirmation with --force flag")
	} else if !e.confirm.Confirm("Proceed? (yes/no): ") {
		e.emit(types.KindInfo, "Cancelled")
		result.Outcome = types.OutcomeSkipped
		result.Reason = "declined by operator"
		return result, nil
	}

	compatible := e.resolveTargets(populated, mapping, target, targetStructured)
	if len(compatible) == 0 {
		e.emit(types.KindError, "No compatible fields found")
		e.emit(types.KindInfo, "Target issue may not have these date fields configured")
		result.Outcome = types.OutcomeFailed
		result.Reason = "no compatible fields on target"
		return result, nil
	}

	e.apply(ctx, targetKey, compatible, targetStructured, result)
	return result, nil
}

// preview renders the full tracked set against source availability. A
// preview never contacts the target for writes and is always a successful,
// no-op outcome.
func (e *Engine) preview(populated map[string]types.PopulatedField) {
	e.emit(types.KindSection, "Dry Run Results")
	e.emit(types.KindInfo, "No changes would be made - this is a preview only")
	for _, name := range fieldmap.TrackedFields {
		if field, ok := populated[name]; ok {
			e.emit(types.KindDetail, "%s: %s (would update)", name, dates.Display(field.Value))
		} else {
			e.emit(types.KindDetail, "%s: Not set (no data to copy)", name)
		}
	}
}

// resolveTargets maps each populated field to an id the target schema
// actually carries. Structured-variant targets try the alternates first
// (the string-typed siblings a structured schema stores), in catalog
// order, before falling back to the primary id. Fields the target cannot
// carry are dropped; that degrades to fewer updates, never an error.
func (e *Engine) resolveTargets(populated map[string]types.PopulatedField, mapping map[string]fieldmap.Entry, target *jira.Issue, targetStructured bool) []types.PopulatedField {
	var compatible []types.PopulatedField
	for _, name := range fieldmap.TrackedFields {
		field, ok := populated[name]
		if !ok {
			continue
		}
		entry, ok := mapping[name]
		if !ok {
			continue
		}

		resolved := ""
		if targetStructured {
			for _, alt := range entry.Alternates {
				if id, ok := fieldmap.Resolve(alt, target); ok {
					resolved = id
					break
				}
			}
		}
		if resolved == "" {
			if id, ok := fieldmap.Resolve(entry.ID, target); ok {
				resolved = id
			}
		}
		if resolved == "" {
			continue
		}

		field.TargetID = resolved
		compatible = append(compatible, field)
	}
	return compatible
}

// apply issues one independent field-update call per entry. Failures are
// reported per field and do not abort sibling updates.
func (e *Engine) apply(ctx context.Context, targetKey string, compatible []types.PopulatedField, targetStructured bool, result *types.SyncResult) {
	e.emit(types.KindSection, "Updating dates")

	for _, field := range compatible {
		value := dates.Format(field.Value, targetStructured)
		fr := types.FieldResult{Name: field.Name, FieldID: field.TargetID, Value: value}

		if err := e.api.UpdateField(ctx, targetKey, field.TargetID, value); err != nil {
			fr.Error = err.Error()
			e.emit(types.KindError, "Failed to update %s on %s: %v", field.TargetID, targetKey, err)
			e.emit(types.KindDetail, "%s ✗", field.Name)
		} else {
			fr.Updated = true
			e.emit(types.KindDetail, "%s ✓", field.Name)
		}
		result.Fields = append(result.Fields, fr)
	}

	updated := result.Updated()
	e.emit(types.KindSection, "Results")
	if updated > 0 {
		result.Outcome = types.OutcomeSuccess
		e.emit(types.KindSuccess, "Updated %d/%d", updated, len(result.Fields))
		if e.BaseURL != "" {
			path := "/browse/"
			if targetStructured {
				path = "/jira/discovery/browse/"
			}
			e.emit(types.KindInfo, "View issue: %s%s%s", e.BaseURL, path, targetKey)
		}
		if updated < len(result.Fields) {
			e.emit(types.KindWarning, "Some updates failed - check field permissions")
		}
	} else {
		result.Outcome = types.OutcomeFailed
		result.Reason = "all field updates failed"
		e.emit(types.KindError, "All updates failed - check permissions")
	}
}

// Catalog exposes the engine's field catalog for listing commands.
func (e *Engine) Catalog() *fieldmap.Catalog {
	return e.catalog
}
