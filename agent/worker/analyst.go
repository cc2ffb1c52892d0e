package worker

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// AnalystLimit caps rows returned by the structured datastore.
const AnalystLimit = 10

// TravelPreferenceRow is the curated destinations table.
type TravelPreferenceRow struct {
	bun.BaseModel `bun:"table:travel_preferences"`

	ID                 int64    `bun:"id,pk,autoincrement"`
	BudgetMax          *float64 `bun:"budget_max"`
	Activities         []string `bun:"activities,array"`
	TravelMonth        string   `bun:"travel_month"`
	DestinationState   []string `bun:"destination_state,array"`
	DestinationCountry []string `bun:"destination_country,array"`
}

var _ contractx.Worker = (*Analyst)(nil)

type Analyst struct {
	db *bun.DB
}

// NewAnalyst accepts a nil db; Execute then reports the datastore as not
// configured.
func NewAnalyst(db *bun.DB) *Analyst {
	return &Analyst{db: db}
}

func (a *Analyst) Kind() statex.WorkerKind { return statex.WorkerDatabase }

func (a *Analyst) Execute(ctx context.Context, prefs statex.Preferences, _ *statex.SharedState) statex.WorkerResult {
	if a.db == nil {
		return statex.Failed(statex.WorkerDatabase, fmt.Errorf("datastore %w", contractx.ErrNotConfigured))
	}

	var rows []TravelPreferenceRow
	q := a.buildQuery(&rows, prefs)
	query := q.String()

	if err := q.Scan(ctx); err != nil {
		res := statex.Failed(statex.WorkerDatabase, fmt.Errorf("query travel_preferences: %w", err))
		res.Query = query
		return res
	}

	out := make([]statex.DatabaseRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, statex.DatabaseRow{
			BudgetMax:            r.BudgetMax,
			Activities:           r.Activities,
			TravelMonth:          r.TravelMonth,
			DestinationStates:    r.DestinationState,
			DestinationCountries: r.DestinationCountry,
		})
	}
	return statex.WorkerResult{
		Kind:    statex.WorkerDatabase,
		Success: true,
		Count:   len(out),
		Query:   query,
		Rows:    out,
	}
}

// buildQuery applies only the filters whose preference field is set.
func (a *Analyst) buildQuery(dest *[]TravelPreferenceRow, prefs statex.Preferences) *bun.SelectQuery {
	q := a.db.NewSelect().
		Model(dest).
		Column("budget_max", "activities", "travel_month", "destination_state", "destination_country")

	if prefs.HasBudget() {
		q = q.Where("budget_max <= ?", *prefs.BudgetMax)
	}
	if len(prefs.Activities) > 0 {
		q = q.Where("activities && ?", pgdialect.Array(prefs.Activities))
	}
	if m := strings.TrimSpace(prefs.TravelMonth); m != "" {
		q = q.Where("LOWER(travel_month) = LOWER(?)", m)
	}
	if len(prefs.DestinationStates) > 0 {
		q = q.Where("destination_state && ?", pgdialect.Array(prefs.DestinationStates))
	}
	if len(prefs.DestinationCountries) > 0 {
		q = q.Where("destination_country && ?", pgdialect.Array(prefs.DestinationCountries))
	}
	return q.Limit(AnalystLimit)
}
