package conversation

import (
	"sort"
	"time"
)

// Group labels, in display order.
const (
	GroupToday      = "Today"
	GroupYesterday  = "Yesterday"
	GroupLast7Days  = "Last 7 days"
	GroupLast30Days = "Last 30 days"
	GroupOlder      = "Older"
)

// ChatGroup is one named recency bucket of the sidebar.
type ChatGroup struct {
	Label         string
	Conversations []*Conversation
}

// GroupByDate buckets conversations by their last update, compared at
// calendar-day granularity in the local timezone of now. Boundaries are
// half-open with the instant itself belonging to the earlier bucket: a
// conversation updated exactly at midnight falls into "Yesterday", not
// "Today". Buckets are ordered Today through Older, conversations inside a
// bucket are most-recently-updated first, and empty buckets are omitted. The
// function is pure and holds no state.
func GroupByDate(convs []*Conversation, now time.Time) []ChatGroup {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfYesterday := startOfToday.AddDate(0, 0, -1)
	startOfWeek := startOfToday.AddDate(0, 0, -7)
	startOfMonth := startOfToday.AddDate(0, 0, -30)

	buckets := map[string][]*Conversation{}
	for _, c := range convs {
		t := c.UpdatedAt
		var label string
		switch {
		case t.After(startOfToday):
			label = GroupToday
		case t.After(startOfYesterday):
			label = GroupYesterday
		case t.After(startOfWeek):
			label = GroupLast7Days
		case t.After(startOfMonth):
			label = GroupLast30Days
		default:
			label = GroupOlder
		}
		buckets[label] = append(buckets[label], c)
	}

	var ret []ChatGroup
	for _, label := range []string{GroupToday, GroupYesterday, GroupLast7Days, GroupLast30Days, GroupOlder} {
		convs := buckets[label]
		if len(convs) == 0 {
			continue
		}
		sort.SliceStable(convs, func(i, j int) bool {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		})
		ret = append(ret, ChatGroup{Label: label, Conversations: convs})
	}
	return ret
}
