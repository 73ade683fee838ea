package application

import (
	"context"
	"errors"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/bnema/aula-cli/internal/ports"
	"github.com/hashicorp/go-hclog"
)

// weekPlanOrder is the order adapters run in for each week. Later adapters
// overwrite earlier ones for the same child.
var weekPlanOrder = []domain.WidgetID{
	domain.WidgetLessonPlan,
	domain.WidgetTaskList,
	domain.WidgetEasyIQ,
	domain.WidgetMeebook,
}

type WeekPlanAggregator struct {
	adapters map[domain.WidgetID]ports.SourceAdapter
	tokens   *TokenCache
	logger   hclog.Logger
}

func NewWeekPlanAggregator(tokens *TokenCache, logger hclog.Logger, adapters ...ports.SourceAdapter) *WeekPlanAggregator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	byID := make(map[domain.WidgetID]ports.SourceAdapter, len(adapters))
	for _, adapter := range adapters {
		byID[adapter.WidgetID()] = adapter
	}

	return &WeekPlanAggregator{adapters: byID, tokens: tokens, logger: logger}
}

// Aggregate runs every discovered adapter for the current and next week,
// then the reminders adapter once. Adapter failures are logged and leave
// that adapter's contribution out.
func (a *WeekPlanAggregator) Aggregate(ctx context.Context, widgets domain.WidgetSet, base domain.PlanRequest) domain.WeekPlans {
	plans := domain.NewWeekPlans(domain.WeekOf(base.Now))

	if !widgets.HasAnySupported() {
		a.logger.Error("week plans enabled but no supported widget found", "widgets", widgets.IDs(), "supported", domain.SupportedWidgets)
		return plans
	}
	if widgets.Has(domain.WidgetLessonPlan) && (widgets.Has(domain.WidgetTaskList) || widgets.Has(domain.WidgetMeebook)) {
		a.logger.Warn("multiple week plan sources are active, this combination is untested", "widgets", widgets.IDs())
	}

	for _, week := range []domain.Week{plans.Current, plans.Next} {
		target := plans.ForWeek(week == plans.Next)
		for _, id := range weekPlanOrder {
			if !widgets.Has(id) {
				continue
			}
			req := base
			req.Week = week
			batch, ok := a.run(ctx, id, req)
			if !ok {
				continue
			}
			for name, content := range batch {
				target[name] = content
			}
		}
	}

	if widgets.Has(domain.WidgetReminders) {
		req := base
		req.Week = plans.Current
		if batch, ok := a.run(ctx, domain.WidgetReminders, req); ok {
			for name, content := range batch {
				plans.Reminders[name] = content.HTML
			}
		}
	}

	return plans
}

func (a *WeekPlanAggregator) run(ctx context.Context, id domain.WidgetID, req domain.PlanRequest) (domain.PlanBatch, bool) {
	adapter, ok := a.adapters[id]
	if !ok {
		a.logger.Warn("no adapter registered for widget", "widget", id)
		return nil, false
	}

	batch, err := a.fetch(ctx, adapter, req)
	if err != nil {
		a.logger.Error("week plan source failed", "widget", id, "week", req.Week.String(), "error", err)
		return nil, false
	}
	a.logger.Debug("week plan source done", "widget", id, "week", req.Week.String(), "children", len(batch))
	return batch, true
}

func (a *WeekPlanAggregator) fetch(ctx context.Context, adapter ports.SourceAdapter, req domain.PlanRequest) (domain.PlanBatch, error) {
	week := req.Week
	if adapter.WidgetID() == domain.WidgetReminders {
		week = domain.Week{}
	}

	token, err := a.tokens.Get(ctx, adapter.WidgetID())
	if err != nil {
		return nil, &domain.AdapterError{Widget: adapter.WidgetID(), Week: week, Err: err}
	}
	req.Token = token.Value

	batch, err := adapter.Fetch(ctx, req)
	if err != nil {
		var adapterErr *domain.AdapterError
		if errors.As(err, &adapterErr) {
			return nil, err
		}
		return nil, &domain.AdapterError{Widget: adapter.WidgetID(), Week: week, Err: err}
	}
	return batch, nil
}
