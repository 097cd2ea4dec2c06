package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pmtools/jiradates/internal/dates"
	"github.com/pmtools/jiradates/internal/types"
)

const (
	// discoverPageSize keeps search batches small to be gentle on the API.
	discoverPageSize = 50

	// discoverPageDelay spaces pagination requests, independent of the
	// gateway's own call pacing.
	discoverPageDelay = 300 * time.Millisecond

	// ideaKeyPrefix identifies structured-variant issue keys; a linked
	// issue without this prefix is taken as the engineering ticket.
	ideaKeyPrefix = "IDEA-"
)

// FindLinkedTicket returns the engineering ticket linked to a
// structured-variant idea, checking both inward and outward link
// directions. Returns "" when the idea has no qualifying link.
func (e *Engine) FindLinkedTicket(ctx context.Context, ideaKey string) (string, error) {
	issue, err := e.api.Issue(ctx, ideaKey)
	if err != nil {
		return "", err
	}
	if !dates.IsStructured(issue) {
		e.emit(types.KindWarning, "%s is not a JPD idea", ideaKey)
		return "", nil
	}

	for _, link := range issue.Links() {
		if link.Key != "" && !strings.HasPrefix(link.Key, ideaKeyPrefix) {
			return link.Key, nil
		}
	}
	return "", nil
}

// AutoSync discovers the linked engineering ticket for an idea and syncs
// its dates onto the idea.
func (e *Engine) AutoSync(ctx context.Context, ideaKey string, force bool) (*types.SyncResult, error) {
	e.emit(types.KindHeader, "Auto-discovering links for %s", ideaKey)

	ticket, err := e.FindLinkedTicket(ctx, ideaKey)
	if err != nil {
		return nil, err
	}
	if ticket == "" {
		e.emit(types.KindError, "No linked engineering ticket found for %s", ideaKey)
		e.emit(types.KindInfo, "JPD idea must have a formal issue link to an engineering ticket")
		return &types.SyncResult{
			Source:  "",
			Target:  ideaKey,
			Outcome: types.OutcomeSkipped,
			Reason:  "no linked ticket",
		}, nil
	}

	e.emit(types.KindSuccess, "Found linked engineering ticket: %s", ticket)
	e.emit(types.KindInfo, "Will copy dates from %s to %s", ticket, ideaKey)

	return e.Sync(ctx, ticket, ideaKey, Options{Force: force})
}

// DiscoverIdeas pages through a project's structured-variant issues, 50 at
// a time, stopping on a short or empty page.
func (e *Engine) DiscoverIdeas(ctx context.Context, projectKey string) ([]string, error) {
	jql := fmt.Sprintf("project = %q AND issuetype = %q", projectKey, dates.IdeaTypeName)

	var keys []string
	startAt := 0
	for {
		e.emit(types.KindInfo, "Fetching ideas %d-%d...", startAt+1, startAt+discoverPageSize)

		page, err := e.api.Search(ctx, jql, startAt, discoverPageSize, "key,summary")
		if err != nil {
			return nil, fmt.Errorf("search ideas in %s: %w", projectKey, err)
		}
		e.emit(types.KindInfo, "Got %d issues in this batch", len(page.Issues))

		if len(page.Issues) == 0 {
			break
		}
		for _, issue := range page.Issues {
			keys = append(keys, issue.Key)
		}
		if len(page.Issues) < discoverPageSize {
			break
		}
		startAt += discoverPageSize
		e.sleep(discoverPageDelay)
	}

	e.emit(types.KindInfo, "Found %d total ideas in project %s", len(keys), projectKey)
	return keys, nil
}

// BulkSync discovers every idea in a project and syncs each from its
// linked engineering ticket, aggregating outcomes into mutually exclusive
// buckets. One item's failure never aborts the batch; the run drains fully
// unless the context is cancelled between items. Writes already applied
// when an interrupt lands stay applied.
func (e *Engine) BulkSync(ctx context.Context, projectKey string, opts Options) (*types.BulkResult, error) {
	result := &types.BulkResult{Project: projectKey, DryRun: opts.DryRun}

	modeText := ""
	if opts.DryRun {
		modeText = " (dry run)"
	}
	e.emit(types.KindHeader, "Bulk sync: %s%s", projectKey, modeText)
	e.emit(types.KindInfo, "Discovering JPD ideas...")

	ideaKeys, err := e.DiscoverIdeas(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	if len(ideaKeys) == 0 {
		e.emit(types.KindError, "No ideas found in project %s", projectKey)
		return result, nil
	}

	verb := "Processing"
	if opts.DryRun {
		verb = "Would process"
	}
	e.emit(types.KindInfo, "%s %d ideas", verb, len(ideaKeys))

	for i, ideaKey := range ideaKeys {
		if ctx.Err() != nil {
			break
		}

		if e.Verbose {
			e.emit(types.KindSection, "Processing %d/%d: %s", i+1, len(ideaKeys), ideaKey)
		} else if e.Progress != nil {
			e.Progress(i+1, len(ideaKeys), ideaKey)
		}

		ticket, err := e.FindLinkedTicket(ctx, ideaKey)
		if err != nil || ticket == "" {
			if e.Verbose {
				e.emit(types.KindInfo, "No linked engineering ticket found for %s", ideaKey)
			}
			result.NoLinks++
			result.Details = append(result.Details, types.BulkDetail{Idea: ideaKey, Status: types.BulkNoLink})
			continue
		}
		if e.Verbose {
			e.emit(types.KindInfo, "Found linked ticket: %s", ticket)
		}

		sync, err := e.Sync(ctx, ticket, ideaKey, opts)
		switch {
		case err != nil || sync.Outcome == types.OutcomeFailed:
			// A preview cannot fail to apply; dry-run failures are not
			// counted as failures.
			if !opts.DryRun {
				result.Failed++
				result.Details = append(result.Details, types.BulkDetail{Idea: ideaKey, Status: types.BulkFailed, Linked: ticket})
				if e.Verbose {
					e.emit(types.KindError, "Failed %s ← %s", ideaKey, ticket)
				}
			}
		case sync.Outcome == types.OutcomeSuccess:
			result.Successful++
			result.Details = append(result.Details, types.BulkDetail{Idea: ideaKey, Status: types.BulkSuccess, Linked: ticket})
			if e.Verbose {
				e.emit(types.KindSuccess, "%s %s ← %s", syncedVerb(opts.DryRun), ideaKey, ticket)
			}
		default: // skipped
			result.Skipped++
			result.Details = append(result.Details, types.BulkDetail{Idea: ideaKey, Status: types.BulkSkipped, Linked: ticket})
			if e.Verbose {
				e.emit(types.KindWarning, "%s %s ← %s", skippedVerb(opts.DryRun), ideaKey, ticket)
			}
		}
		result.Processed++

		e.sleep(itemDelay(i+1, opts.DryRun))
	}

	e.emitBulkSummary(result)
	return result, nil
}

// itemDelay spaces bulk items: short and fixed for previews, otherwise
// progressively increasing so long runs ease off as they go.
func itemDelay(index int, dryRun bool) time.Duration {
	if dryRun {
		return 100 * time.Millisecond
	}
	seconds := 0.3 + float64(index)/100
	if seconds > 1.0 {
		seconds = 1.0
	}
	return time.Duration(seconds * float64(time.Second))
}

func syncedVerb(dryRun bool) string {
	if dryRun {
		return "Would sync"
	}
	return "Synced"
}

func skippedVerb(dryRun bool) string {
	if dryRun {
		return "Would skip"
	}
	return "Skipped"
}

func (e *Engine) emitBulkSummary(result *types.BulkResult) {
	modeText := ""
	if result.DryRun {
		modeText = " (dry run)"
	}
	e.emit(types.KindHeader, "Summary: %s%s", result.Project, modeText)

	if result.Successful > 0 {
		e.emit(types.KindSuccess, "%s %d ideas", syncedVerb(result.DryRun), result.Successful)
	}
	if result.Skipped > 0 {
		e.emit(types.KindWarning, "%s %d ideas (no milestone dates)", skippedVerb(result.DryRun), result.Skipped)
	}
	if result.NoLinks > 0 {
		e.emit(types.KindWarning, "No linked tickets: %d ideas", result.NoLinks)
	}
	if result.Failed > 0 && !result.DryRun {
		e.emit(types.KindError, "Failed to sync: %d ideas", result.Failed)
	}
	e.emit(types.KindInfo, "Total processed: %d ideas", result.Processed+result.NoLinks)

	if result.DryRun && result.Successful > 0 {
		e.emit(types.KindInfo, "Run without --dry-run to apply changes")
	}
}
