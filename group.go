package hirewise

import "sort"

// DisplayMessage is a message annotated for rendering.
type DisplayMessage struct {
	Message
	Mine bool // sender is the authenticated user
}

// DayGroup is one calendar day's worth of messages.
type DayGroup struct {
	Day      string // "2006-01-02", UTC
	Messages []DisplayMessage
}

// GroupByDay partitions messages into day buckets for display. Buckets are
// ordered by ascending date; messages keep their original relative order
// within a bucket. Pure: safe to call repeatedly on the same input.
func GroupByDay(msgs []Message, selfID int64) []DayGroup {
	byDay := make(map[string]int)
	var groups []DayGroup

	for _, m := range msgs {
		day := m.CreatedAt.UTC().Format("2006-01-02")
		idx, ok := byDay[day]
		if !ok {
			idx = len(groups)
			byDay[day] = idx
			groups = append(groups, DayGroup{Day: day})
		}
		groups[idx].Messages = append(groups[idx].Messages, DisplayMessage{
			Message: m,
			Mine:    m.SenderID == selfID,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Day < groups[j].Day
	})
	return groups
}
