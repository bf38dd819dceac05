// Package query implements the pure filter/search/sort pipeline that
// derives the visible message list from an account's canonical message
// set. It holds no state and never mutates its input.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/postium/postium/internal/model"
)

// SortField selects the message attribute to order by.
type SortField string

const (
	SortByDate       SortField = "date"
	SortBySubject    SortField = "subject"
	SortBySender     SortField = "sender"
	SortBySize       SortField = "size"
	SortByImportance SortField = "importance"
)

// Sort is a sort specification. Desc is the default presentation order
// for dates (newest first).
type Sort struct {
	By   SortField
	Desc bool
}

// DefaultSort returns the date-descending default.
func DefaultSort() Sort {
	return Sort{By: SortByDate, Desc: true}
}

// Filter is the structured message filter. Nil pointer fields are
// inactive; active predicates are combined as a conjunction.
type Filter struct {
	Read          *bool
	Starred       *bool
	Important     *bool
	Flagged       *bool
	HasAttachment *bool

	DateFrom *time.Time
	DateTo   *time.Time

	MinSize int64
	MaxSize int64

	// LabelIDs matches messages holding any of the given labels.
	LabelIDs []string
}

// IsZero reports whether no predicate is active.
func (f Filter) IsZero() bool {
	return f.Read == nil && f.Starred == nil && f.Important == nil &&
		f.Flagged == nil && f.HasAttachment == nil &&
		f.DateFrom == nil && f.DateTo == nil &&
		f.MinSize == 0 && f.MaxSize == 0 && len(f.LabelIDs) == 0
}

// Visible derives the ordered visible list for one folder from the full
// message set of an account. The stages run in a fixed order: folder
// selection (virtual views select by flag across all folders), free-text
// search, structured filters, then a stable sort. Re-applying the same
// pipeline to its own output yields the same list.
func Visible(
	msgs []model.Message,
	folder model.Folder,
	term string,
	filter Filter,
	s Sort,
) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if !inFolder(m, folder) {
			continue
		}
		if !matchesSearch(m, term) {
			continue
		}
		if !matchesFilter(m, filter) {
			continue
		}
		out = append(out, m)
	}

	sortMessages(out, s)
	return out
}

// inFolder reports whether m belongs to the given folder or view.
func inFolder(m model.Message, folder model.Folder) bool {
	switch folder {
	case model.FolderAll:
		return true
	case model.FolderStarred:
		return m.IsStarred
	case model.FolderImportant:
		return m.IsImportant
	default:
		return m.Folder == folder
	}
}

// matchesSearch applies the free-text term as a case-insensitive
// substring match over subject, body, and sender name/address. An empty
// term matches everything.
func matchesSearch(m model.Message, term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(m.Subject), t) ||
		strings.Contains(strings.ToLower(m.Body), t) ||
		strings.Contains(strings.ToLower(m.From.Address), t) ||
		strings.Contains(strings.ToLower(m.From.Name), t)
}

// matchesFilter applies each active structured predicate as a
// conjunction.
func matchesFilter(m model.Message, f Filter) bool {
	if f.Read != nil && m.IsRead != *f.Read {
		return false
	}
	if f.Starred != nil && m.IsStarred != *f.Starred {
		return false
	}
	if f.Important != nil && m.IsImportant != *f.Important {
		return false
	}
	if f.Flagged != nil && m.IsFlagged != *f.Flagged {
		return false
	}
	if f.HasAttachment != nil && m.HasAttachments != *f.HasAttachment {
		return false
	}
	if f.DateFrom != nil && m.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && m.Date.After(*f.DateTo) {
		return false
	}
	if f.MinSize > 0 && m.Size < f.MinSize {
		return false
	}
	if f.MaxSize > 0 && m.Size > f.MaxSize {
		return false
	}
	if len(f.LabelIDs) > 0 && !hasAnyLabel(m, f.LabelIDs) {
		return false
	}
	return true
}

func hasAnyLabel(m model.Message, labelIDs []string) bool {
	for _, want := range labelIDs {
		for _, have := range m.LabelIDs {
			if have == want {
				return true
			}
		}
	}
	return false
}

// sortMessages orders msgs in place by the requested field. Ties keep
// their relative order from the previous stage (stable sort).
func sortMessages(msgs []model.Message, s Sort) {
	less := lessFunc(s.By)
	sort.SliceStable(msgs, func(i, j int) bool {
		if s.Desc {
			return less(msgs[j], msgs[i])
		}
		return less(msgs[i], msgs[j])
	})
}

// lessFunc returns the ascending comparison for a sort field.
// Importance ascending puts unimportant messages first, so descending
// sorts important-first.
func lessFunc(field SortField) func(a, b model.Message) bool {
	switch field {
	case SortBySubject:
		return func(a, b model.Message) bool {
			return strings.ToLower(a.Subject) < strings.ToLower(b.Subject)
		}
	case SortBySender:
		return func(a, b model.Message) bool {
			return strings.ToLower(a.From.Display()) < strings.ToLower(b.From.Display())
		}
	case SortBySize:
		return func(a, b model.Message) bool {
			return a.Size < b.Size
		}
	case SortByImportance:
		return func(a, b model.Message) bool {
			return !a.IsImportant && b.IsImportant
		}
	default: // SortByDate
		return func(a, b model.Message) bool {
			return a.Date.Before(b.Date)
		}
	}
}
