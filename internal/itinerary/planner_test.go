package itinerary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/itinerary"
)

// daysWithEvents returns one view model per count, keyed "d0", "d1", ...
func daysWithEvents(counts ...int) []domain.DayViewModel {
	days := make([]domain.DayViewModel, len(counts))
	for i, n := range counts {
		days[i] = domain.DayViewModel{
			DateKey: "d" + string(rune('0'+i)),
			Events:  make([]domain.DisplayEvent, n),
		}
	}
	return days
}

func pageKeys(plan domain.PagePlan) [][]string {
	out := make([][]string, len(plan.Pages))
	for i, p := range plan.Pages {
		for _, d := range p.Days {
			out[i] = append(out[i], d.DateKey)
		}
	}
	return out
}

func TestPlan_ExampleTrip_SinglePage(t *testing.T) {
	days, err := itinerary.NewBuilder(nil).BuildAll(tripFixture())
	require.NoError(t, err)

	plan := itinerary.Plan(days, domain.LayoutPolicy{MaxItemsPerPage: 3})

	require.Len(t, plan.Pages, 1)
	page := plan.Pages[0]
	assert.Equal(t, 1, page.Number)
	require.Len(t, page.Days, 3)

	assert.Equal(t, "2024-07-14", page.Days[0].DateKey)
	require.Len(t, page.Days[0].Events, 1)
	assert.Equal(t, "🛬", page.Days[0].Events[0].Icon)

	assert.Equal(t, "2024-07-15", page.Days[1].DateKey)
	require.Len(t, page.Days[1].Events, 1)
	assert.Equal(t, "09:00 - 11:00 - Tram 28", page.Days[1].Events[0].Text())

	assert.Equal(t, "2024-07-16", page.Days[2].DateKey)
	require.Len(t, page.Days[2].Events, 1)
	assert.Equal(t, "🛫", page.Days[2].Events[0].Icon)
}

func TestPlan_OneDayPerPage(t *testing.T) {
	plan := itinerary.Plan(daysWithEvents(1, 0, 2), domain.LayoutPolicy{MaxItemsPerPage: 1})

	assert.Equal(t, [][]string{{"d0"}, {"d1"}, {"d2"}}, pageKeys(plan))
	for i, p := range plan.Pages {
		assert.Equal(t, i+1, p.Number)
	}
}

func TestPlan_FixedCount_IgnoresHeight(t *testing.T) {
	policy := domain.LayoutPolicy{
		Strategy:           domain.StrategyFixedCount,
		MaxItemsPerPage:    2,
		PageHeightBudget:   10,
		ItemBaseHeight:     20,
		ItemHeightPerEvent: 12,
	}

	plan := itinerary.Plan(daysWithEvents(5, 5, 5, 5, 5), policy)

	assert.Equal(t, [][]string{{"d0", "d1"}, {"d2", "d3"}, {"d4"}}, pageKeys(plan))
}

func TestPlan_DefaultPolicyIsThreePerPage(t *testing.T) {
	plan := itinerary.Plan(daysWithEvents(0, 0, 0, 0, 0, 0, 0), domain.LayoutPolicy{})

	assert.Equal(t, [][]string{{"d0", "d1", "d2"}, {"d3", "d4", "d5"}, {"d6"}}, pageKeys(plan))
	assert.Equal(t, 7, plan.DayCount())
}

func TestPlan_HeightBudget_OversizedDayAlone(t *testing.T) {
	policy := domain.LayoutPolicy{
		Strategy:           domain.StrategyHeightBudget,
		MaxItemsPerPage:    3,
		PageHeightBudget:   50,
		ItemBaseHeight:     20,
		ItemHeightPerEvent: 12,
	}

	// heights: 20, 56, 20, 20
	plan := itinerary.Plan(daysWithEvents(0, 3, 0, 0), policy)

	assert.Equal(t, [][]string{{"d0"}, {"d1"}, {"d2", "d3"}}, pageKeys(plan))
	assert.InDelta(t, 56.0, plan.Pages[1].EstimatedHeight, 0.001)
}

func TestPlan_HeightBudget_CountThresholdStillApplies(t *testing.T) {
	policy := domain.LayoutPolicy{
		Strategy:           domain.StrategyHeightBudget,
		MaxItemsPerPage:    2,
		PageHeightBudget:   1000,
		ItemBaseHeight:     20,
		ItemHeightPerEvent: 12,
	}

	plan := itinerary.Plan(daysWithEvents(0, 0, 0), policy)

	assert.Equal(t, [][]string{{"d0", "d1"}, {"d2"}}, pageKeys(plan))
}

func TestPlan_HeightBudget_EmptyDayCostsBaseHeight(t *testing.T) {
	policy := domain.LayoutPolicy{
		Strategy:           domain.StrategyHeightBudget,
		MaxItemsPerPage:    10,
		PageHeightBudget:   60,
		ItemBaseHeight:     20,
		ItemHeightPerEvent: 12,
	}

	// three empty days fit exactly (60); a fourth overflows.
	plan := itinerary.Plan(daysWithEvents(0, 0, 0, 0), policy)

	assert.Equal(t, [][]string{{"d0", "d1", "d2"}, {"d3"}}, pageKeys(plan))
	assert.InDelta(t, 60.0, plan.Pages[0].EstimatedHeight, 0.001)
}

func TestPlan_HeightStrategyWithoutBudgetFallsBackToCount(t *testing.T) {
	policy := domain.LayoutPolicy{Strategy: domain.StrategyHeightBudget, MaxItemsPerPage: 2}

	plan := itinerary.Plan(daysWithEvents(9, 9, 9), policy)

	assert.Equal(t, [][]string{{"d0", "d1"}, {"d2"}}, pageKeys(plan))
}

func TestPlan_NoDays(t *testing.T) {
	plan := itinerary.Plan(nil, domain.DefaultLayoutPolicy())

	assert.NotNil(t, plan.Pages)
	assert.Empty(t, plan.Pages)
}

func TestEstimateHeight(t *testing.T) {
	policy := domain.LayoutPolicy{ItemBaseHeight: 20, ItemHeightPerEvent: 12}

	assert.InDelta(t, 20.0, itinerary.EstimateHeight(daysWithEvents(0)[0], policy), 0.001)
	assert.InDelta(t, 56.0, itinerary.EstimateHeight(daysWithEvents(3)[0], policy), 0.001)
}
