package syncer

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmtools/jiradates/internal/dates"
	"github.com/pmtools/jiradates/internal/fieldmap"
	"github.com/pmtools/jiradates/internal/types"
)

// ListFields renders the date surface of one issue: the tracked milestone
// fields, any other date-typed fields, and totals. With showAll, unset
// milestone fields are shown as "Not set".
func (e *Engine) ListFields(ctx context.Context, issueKey string, showAll bool) error {
	issue, err := e.api.Issue(ctx, issueKey)
	if err != nil {
		return fmt.Errorf("list fields: %w", err)
	}

	structured := dates.IsStructured(issue)
	typeLabel := issue.TypeName()
	if structured {
		typeLabel = "JPD Idea"
	}
	scope := "Populated fields"
	if showAll {
		scope = "All fields"
	}

	e.emit(types.KindHeader, "%s (%s)", issueKey, typeLabel)
	if summary := issue.Summary(); summary != "" {
		e.emit(types.KindInfo, "%s", summary)
	}
	e.emit(types.KindInfo, "Showing: %s", scope)

	defs, err := e.catalog.Fields(ctx)
	if err != nil {
		return err
	}

	populatedTotal := 0
	dateTotal := 0
	milestoneTotal := 0
	var otherDates []string

	e.emit(types.KindSection, "Milestone Dates")
	shown := make(map[string]bool)
	for _, def := range defs {
		value := issue.Value(def.ID)
		populated := issue.Has(def.ID) && !dates.IsEmpty(value)
		if populated {
			populatedTotal++
		}
		if !fieldmap.IsDateType(def.Schema.Type) {
			continue
		}
		if populated {
			dateTotal++
		}

		if fieldmap.IsTracked(def.Name) {
			// Schema-variant duplicates share a name; show each once.
			if shown[def.Name] {
				continue
			}
			if populated {
				shown[def.Name] = true
				milestoneTotal++
				e.emit(types.KindInfo, "%s: %s", def.Name, dates.Display(value))
			}
			continue
		}
		if populated {
			otherDates = append(otherDates, fmt.Sprintf("%s: %s", def.Name, dates.Display(value)))
		}
	}
	if showAll {
		for _, name := range fieldmap.TrackedFields {
			if !shown[name] {
				e.emit(types.KindInfo, "%s: Not set", name)
			}
		}
	}

	if len(otherDates) > 0 {
		e.emit(types.KindSection, "Other Dates")
		for _, line := range otherDates {
			e.emit(types.KindInfo, "%s", line)
		}
	}

	e.emit(types.KindSection, "Summary")
	e.emit(types.KindInfo, "Total: %d fields, %d dates, %d milestones", populatedTotal, dateTotal, milestoneTotal)
	if structured {
		e.emit(types.KindInfo, "JPD formatting applies for updates")
	}
	return nil
}

// CheckLinks reports whether one issue references another, through formal
// issue links in either direction or as text in any populated field.
func (e *Engine) CheckLinks(ctx context.Context, fromKey, toKey string) (bool, error) {
	e.emit(types.KindHeader, "Checking links: %s → %s", fromKey, toKey)

	issue, err := e.api.Issue(ctx, fromKey)
	if err != nil {
		e.emit(types.KindError, "Cannot access %s", fromKey)
		return false, err
	}
	e.emit(types.KindInfo, "Searching %s for references to %q...", fromKey, toKey)

	type reference struct {
		field string
		value string
	}
	var found []reference

	for _, link := range issue.Links() {
		if strings.EqualFold(link.Key, toKey) {
			found = append(found, reference{
				field: "Issue Links",
				value: fmt.Sprintf("%s: %s → %s", link.Direction, link.TypeName, link.Key),
			})
		}
	}

	upper := strings.ToUpper(toKey)
	for fieldID, value := range issue.Fields {
		if fieldID == "issuelinks" || dates.IsEmpty(value) {
			continue
		}
		text := fmt.Sprintf("%v", value)
		if strings.Contains(strings.ToUpper(text), upper) {
			found = append(found, reference{
				field: e.catalog.FieldName(ctx, fieldID),
				value: truncateValue(text, 100),
			})
		}
	}

	e.emit(types.KindSection, "Results")
	if len(found) == 0 {
		e.emit(types.KindWarning, "No references to %q found in %s", toKey, fromKey)
		return false, nil
	}
	e.emit(types.KindSuccess, "Found %d reference(s) to %q:", len(found), toKey)
	for _, ref := range found {
		e.emit(types.KindDetail, "%s: %s", ref.field, ref.value)
	}
	return true, nil
}

func truncateValue(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
