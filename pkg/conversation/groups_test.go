package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convUpdatedAt(id string, t time.Time) *Conversation {
	return &Conversation{ID: id, Title: id, UpdatedAt: t}
}

func TestGroupByDateBuckets(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	startOfToday := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	convs := []*Conversation{
		convUpdatedAt("today", now.Add(-time.Hour)),
		convUpdatedAt("yesterday", startOfToday.Add(-2*time.Hour)),
		convUpdatedAt("this-week", startOfToday.AddDate(0, 0, -5)),
		convUpdatedAt("this-month", startOfToday.AddDate(0, 0, -20)),
		convUpdatedAt("ancient", startOfToday.AddDate(0, -6, 0)),
	}

	groups := GroupByDate(convs, now)
	require.Len(t, groups, 5)
	labels := make([]string, 0, len(groups))
	for _, g := range groups {
		require.Len(t, g.Conversations, 1)
		labels = append(labels, g.Label)
	}
	assert.Equal(t, []string{GroupToday, GroupYesterday, GroupLast7Days, GroupLast30Days, GroupOlder}, labels)
}

func TestGroupByDateHalfOpenBoundaries(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	startOfToday := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	// A conversation updated exactly on a boundary instant belongs to the
	// earlier bucket, never the later one.
	cases := []struct {
		name      string
		updatedAt time.Time
		label     string
	}{
		{"just after midnight", startOfToday.Add(time.Nanosecond), GroupToday},
		{"exactly midnight", startOfToday, GroupYesterday},
		{"just before midnight", startOfToday.Add(-time.Nanosecond), GroupYesterday},
		{"start of yesterday", startOfToday.AddDate(0, 0, -1), GroupLast7Days},
		{"just after seven days ago", startOfToday.AddDate(0, 0, -7).Add(time.Nanosecond), GroupLast7Days},
		{"exactly seven days ago", startOfToday.AddDate(0, 0, -7), GroupLast30Days},
		{"just after thirty days ago", startOfToday.AddDate(0, 0, -30).Add(time.Nanosecond), GroupLast30Days},
		{"exactly thirty days ago", startOfToday.AddDate(0, 0, -30), GroupOlder},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups := GroupByDate([]*Conversation{convUpdatedAt("c", tc.updatedAt)}, now)
			require.Len(t, groups, 1)
			assert.Equal(t, tc.label, groups[0].Label)
		})
	}
}

func TestGroupByDateOmitsEmptyBuckets(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	convs := []*Conversation{
		convUpdatedAt("a", now.Add(-time.Minute)),
		convUpdatedAt("b", now.AddDate(-1, 0, 0)),
	}

	groups := GroupByDate(convs, now)
	require.Len(t, groups, 2)
	assert.Equal(t, GroupToday, groups[0].Label)
	assert.Equal(t, GroupOlder, groups[1].Label)
}

func TestGroupByDateSortsWithinBucket(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	convs := []*Conversation{
		convUpdatedAt("older", now.Add(-3*time.Hour)),
		convUpdatedAt("newest", now.Add(-time.Minute)),
		convUpdatedAt("middle", now.Add(-time.Hour)),
	}

	groups := GroupByDate(convs, now)
	require.Len(t, groups, 1)
	ids := make([]string, 0, 3)
	for _, c := range groups[0].Conversations {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"newest", "middle", "older"}, ids)
}

func TestGroupByDateEmptyInput(t *testing.T) {
	assert.Empty(t, GroupByDate(nil, time.Now()))
}
