package domain

import "sort"

type WidgetID string

const (
	WidgetLessonPlan WidgetID = "0029"
	WidgetTaskList   WidgetID = "0030"
	WidgetEasyIQ     WidgetID = "0001"
	WidgetReminders  WidgetID = "0062"
	WidgetMeebook    WidgetID = "0004"
)

var SupportedWidgets = []WidgetID{
	WidgetLessonPlan,
	WidgetTaskList,
	WidgetEasyIQ,
	WidgetReminders,
	WidgetMeebook,
}

// WidgetSet maps discovered widget ids to their display names.
type WidgetSet map[WidgetID]string

func (w WidgetSet) Has(id WidgetID) bool {
	_, ok := w[id]
	return ok
}

func (w WidgetSet) HasAnySupported() bool {
	for _, id := range SupportedWidgets {
		if w.Has(id) {
			return true
		}
	}
	return false
}

func (w WidgetSet) IDs() []WidgetID {
	ids := make([]WidgetID, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w WidgetSet) Clone() WidgetSet {
	if w == nil {
		return nil
	}
	out := make(WidgetSet, len(w))
	for id, name := range w {
		out[id] = name
	}
	return out
}
