package repository

import (
	"strings"
	"time"
)

// FilterAll is the sentinel value that disables an exact-match filter.
const FilterAll = "all"

// Pagination bounds for message queries.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// condition is one SQL predicate with its bind arguments. Placeholders
// use '?' and are rebound to the driver's format at query time.
type condition struct {
	expr string
	args []interface{}
}

// conditionSet is an immutable list of predicates combined with AND.
// And returns a new set, leaving the receiver untouched.
type conditionSet struct {
	conds []condition
}

func (s conditionSet) And(expr string, args ...interface{}) conditionSet {
	next := make([]condition, len(s.conds), len(s.conds)+1)
	copy(next, s.conds)
	return conditionSet{conds: append(next, condition{expr: expr, args: args})}
}

// WhereClause renders the set as a WHERE clause (with leading space),
// or an empty string when no predicates were added.
func (s conditionSet) WhereClause() (string, []interface{}) {
	if len(s.conds) == 0 {
		return "", nil
	}
	exprs := make([]string, 0, len(s.conds))
	var args []interface{}
	for _, c := range s.conds {
		exprs = append(exprs, c.expr)
		args = append(args, c.args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}

// MessageFilter holds the optional predicates for listing messages.
// Zero values (or the "all" sentinel for string fields) disable the
// corresponding filter.
type MessageFilter struct {
	BotID       string
	Direction   string
	IsGroup     *bool
	FlaggedOnly bool
	Search      string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}

// Normalized applies pagination defaults and caps.
func (f MessageFilter) Normalized() MessageFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Conditions builds the predicate set for this filter. Every supplied
// filter is ANDed; the free-text search is a single OR predicate over
// message text, sender, recipient and chat name.
func (f MessageFilter) Conditions() conditionSet {
	set := conditionSet{}

	if f.BotID != "" && f.BotID != FilterAll {
		set = set.And("bot_id = ?", f.BotID)
	}
	if f.Direction != "" && f.Direction != FilterAll {
		set = set.And("direction = ?", f.Direction)
	}
	if f.IsGroup != nil {
		set = set.And("is_group = ?", *f.IsGroup)
	}
	if f.FlaggedOnly {
		set = set.And("flagged = TRUE")
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		set = set.And("(message_text ILIKE ? OR sender_name ILIKE ? OR recipient_name ILIKE ? OR chat_name ILIKE ?)",
			pattern, pattern, pattern, pattern)
	}
	if f.StartDate != nil {
		set = set.And("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		set = set.And("created_at <= ?", *f.EndDate)
	}

	return set
}
