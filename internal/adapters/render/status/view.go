package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/aula-cli/internal/application"
	"github.com/bnema/aula-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
}

// Render draws a refresh snapshot: children with presence, the newest
// unread message and week plan coverage.
func Render(snapshot application.Snapshot, opts RenderOptions) (string, error) {
	return run(func(s styles) string { return renderSnapshot(snapshot, opts, s) })
}

// RenderPlans draws week plans and reminders per child.
func RenderPlans(plans []application.ChildPlan) (string, error) {
	return run(func(s styles) string { return renderPlans(plans, s) })
}

// RenderEvents draws a child's calendar.
func RenderEvents(child domain.Child, events []domain.CalendarEvent) (string, error) {
	return run(func(s styles) string { return renderEvents(child, events, s) })
}

func renderSnapshot(snap application.Snapshot, opts RenderOptions, s styles) string {
	header := fmt.Sprintf("children: %d", len(snap.Roster.Children))
	if snap.Endpoint.Resolved() {
		header += fmt.Sprintf("  api: v%d", snap.Endpoint.Version)
	}
	if !snap.RefreshedAt.IsZero() {
		header += "  refreshed: " + formatClock(snap.RefreshedAt, opts.Now)
	}

	title := "Aula"
	if snap.Guardian.Username != "" {
		title += " - " + snap.Guardian.Username
	}
	lines := []string{s.title.Render(title), s.header.Render(header)}
	if isStale(snap.RefreshedAt, opts) {
		lines = append(lines, s.warning.Render("[stale]"))
	}

	if len(snap.Roster.Children) == 0 {
		lines = append(lines, s.empty.Render("No children on this account."))
	}
	for _, child := range snap.Roster.Children {
		lines = append(lines, s.section.Render(renderChild(child, snap.PresenceOf(child.ID), s)))
	}

	lines = append(lines, s.section.Render(renderMessage(snap.Message, s)))

	if snap.Plans != nil {
		lines = append(lines, s.section.Render(renderPlanCoverage(*snap.Plans, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderChild(child domain.Child, presence domain.Presence, s styles) string {
	name := child.Name
	if child.Institution.Name != "" {
		name += " " + s.meta.Render("("+child.Institution.Name+")")
	}
	parts := []string{
		s.child.Render(name),
		lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render("presence: "), presenceStyle(presence, s).Render(presence.Label())),
	}

	if !presence.HasData {
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	r := presence.Record
	if span := clockSpan(r.CheckInTime, r.CheckOutTime); span != "" {
		parts = append(parts, s.detail.Render("checked in: ")+s.timeSpan.Render(span))
	}
	if span := clockSpan(r.EntryTime, r.ExitTime); span != "" {
		parts = append(parts, s.detail.Render("planned: ")+s.timeSpan.Render(span))
	}
	if span := clockSpan(r.SelfDeciderStartTime, r.SelfDeciderEndTime); span != "" {
		parts = append(parts, s.detail.Render("self-decider: ")+s.timeSpan.Render(span))
	}
	for _, field := range []struct{ label, value string }{
		{"goes home with", r.ExitWith},
		{"location", r.Location},
		{"activity", r.ActivityType},
		{"spare time", r.SpareTimeActivity},
		{"comment", r.Comment},
	} {
		if strings.TrimSpace(field.value) != "" {
			parts = append(parts, s.detail.Render(field.label+": "+field.value))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func presenceStyle(p domain.Presence, s styles) lipgloss.Style {
	if !p.HasData {
		return s.empty
	}
	switch p.Record.Status {
	case domain.PresenceArrived, domain.PresenceSleeping:
		return s.present
	case domain.PresenceSick:
		return s.absent
	case domain.PresenceOnTrip, domain.PresenceHoliday:
		return s.away
	default:
		return s.neutral
	}
}

func renderMessage(m domain.MessageSummary, s styles) string {
	if !m.Unread {
		return s.empty.Render("No unread messages.")
	}

	parts := []string{s.unread.Render("Unread message")}
	if m.Subject != "" {
		parts = append(parts, s.label.Render("subject: ")+s.detail.Render(m.Subject))
	}
	parts = append(parts, s.label.Render("from: ")+s.detail.Render(m.Sender))
	if text := plainText(m.Text, s); text != "" {
		parts = append(parts, s.detail.Render(truncate(text, 400)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderPlanCoverage(plans domain.WeekPlans, s styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		s.title.Render("Week plans"),
		s.detail.Render(fmt.Sprintf("%s: %d children", plans.Current, len(plans.ThisWeek))),
		s.detail.Render(fmt.Sprintf("%s: %d children", plans.Next, len(plans.NextWeek))),
		s.detail.Render(fmt.Sprintf("reminders: %d children", len(plans.Reminders))),
	)
}

func renderPlans(plans []application.ChildPlan, s styles) string {
	if len(plans) == 0 {
		return s.empty.Render("No week plans available.")
	}

	lines := make([]string, 0, len(plans))
	for _, plan := range plans {
		parts := []string{s.child.Render(fmt.Sprintf("%s - %s", plan.Child.Name, plan.Week))}
		switch {
		case !plan.Found || plan.Content.Empty():
			parts = append(parts, s.empty.Render("No week plan."))
		case plan.Content.Structured():
			parts = append(parts, renderStructured(plan.Content, s))
		default:
			parts = append(parts, plainText(plan.Content.HTML, s))
		}
		if plan.Reminder != "" {
			parts = append(parts, s.section.Render(s.title.Render("Reminders")), plainText(plan.Reminder, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStructured(content domain.PlanContent, s styles) string {
	var parts []string
	if content.WeekPlan != nil && content.WeekPlan.Text != "" {
		parts = append(parts, plainText(content.WeekPlan.Text, s))
	}
	for _, e := range content.Events {
		heading := e.Owner
		if e.Title != "" {
			heading = e.Title
		}
		parts = append(parts,
			s.timeSpan.Render(e.Start.Format("Mon 02 Jan 15:04")+" - "+e.End.Format("15:04"))+" "+s.bold.Render(heading),
		)
		if text := plainText(e.Description, s); text != "" {
			parts = append(parts, s.detail.Render(text))
		}
	}
	if len(parts) == 0 {
		return s.empty.Render("No events.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderEvents(child domain.Child, events []domain.CalendarEvent, s styles) string {
	lines := []string{s.child.Render(child.Name), s.header.Render(fmt.Sprintf("events: %d", len(events)))}
	if len(events) == 0 {
		lines = append(lines, s.empty.Render("No calendar events."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	var day string
	for _, e := range events {
		if d := e.Start.Format("Monday 02 January"); d != day {
			day = d
			lines = append(lines, s.section.Render(s.heading.Render(d)))
		}
		lines = append(lines, s.timeSpan.Render(e.Start.Format("15:04")+"-"+e.End.Format("15:04"))+" "+s.detail.Render(e.Summary))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func clockSpan(from, to string) string {
	switch {
	case from == "" && to == "":
		return ""
	case to == "":
		return from
	case from == "":
		return "- " + to
	default:
		return from + " - " + to
	}
}

func formatClock(at, now time.Time) string {
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}
	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04")
	}
	return at.Format("15:04 on 02 Jan")
}

func isStale(refreshedAt time.Time, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.StaleAfter <= 0 || refreshedAt.IsZero() {
		return false
	}
	return opts.Now.Sub(refreshedAt) > opts.StaleAfter
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
