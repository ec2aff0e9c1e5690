package metrics_test

import (
	"testing"

	"github.com/opsdeck/opsdeck/internal/cascade"
	"github.com/opsdeck/opsdeck/internal/hydrate"
	"github.com/opsdeck/opsdeck/internal/metrics"
	"github.com/opsdeck/opsdeck/internal/table"
	"github.com/stretchr/testify/require"
)

func fullTables() hydrate.Tables {
	return hydrate.Tables{
		table.KindProject: {
			{Fields: map[string]any{"project_id": "P1", "owner_User_id": "X1", "Status": "AT RISK"}},
			{Fields: map[string]any{"project_id": "P2", "owner_User_id": "X2", "Status": "Active"}},
			{Fields: map[string]any{"project_id": "P3", "owner_User_id": "X1", "Status": "at risk"}},
		},
		table.KindTask: {
			{Fields: map[string]any{"task_id": "T1", "assignee_User_id": "X1", "status": "To Do", "logged_hours": float64(10), "estimated_hours": float64(20)}},
			{Fields: map[string]any{"task_id": "T2", "assignee_User_id": "X1", "status": "Done", "logged_hours": "not-a-number", "estimated_hours": float64(8)}},
			{Fields: map[string]any{"task_id": "T3", "assignee_User_id": "X2", "status": "Open", "logged_hours": float64(30)}},
		},
		table.KindPerson: {
			{Fields: map[string]any{"User_id": "X1", "full_name": "Ada Park", "weekly_capacity": float64(40)}},
			{Fields: map[string]any{"User_id": "X2", "full_name": "Lin Osei", "weekly_capacity": float64(40)}},
		},
	}
}

func TestCompute_FounderUnfiltered(t *testing.T) {
	full := fullTables()
	s := metrics.Compute(cascade.DisplaySet{}, cascade.None, cascade.ModeFounder, full, "X1")

	require.Equal(t, "3", s.TotalProjects.Value)
	require.Equal(t, "Total Projects", s.TotalProjects.Title)
	require.Equal(t, "2", s.ProjectsAtRisk.Value, "at-risk match is case-insensitive")
	require.Equal(t, "2", s.OpenTasks.Value)
	// logged 10+30 over capacity 80, the unparseable value counts as 0.
	require.Equal(t, "50%", s.Utilization.Value)
	require.Equal(t, "Team Utilization", s.Utilization.Title)
}

func TestCompute_TeamUsesOwnUnfilteredTotals(t *testing.T) {
	full := fullTables()
	// Display set is deliberately trimmed to something else; "My X"
	// metrics must come from the person's own unfiltered totals.
	s := metrics.Compute(cascade.DisplaySet{}, cascade.None, cascade.ModeTeam, full, "X1")

	require.Equal(t, "My Projects", s.TotalProjects.Title)
	require.Equal(t, "2", s.TotalProjects.Value)
	require.Equal(t, "1", s.OpenTasks.Value, "only X1's open tasks")
	// X1 logged 10 over own capacity 40.
	require.Equal(t, "25%", s.Utilization.Value)
	require.Equal(t, "My Utilization", s.Utilization.Title)
}

func TestCompute_FilteredUsesDisplaySetAsIs(t *testing.T) {
	full := fullTables()
	display := cascade.DisplaySet{
		Projects: full[table.KindProject][:1],
		Tasks:    full[table.KindTask][:1],
		People:   full[table.KindPerson][:1],
	}
	s := metrics.Compute(display, cascade.Filter{Kind: cascade.FilterUnit, ID: "U1"}, cascade.ModeFounder, full, "X1")

	require.Equal(t, "1", s.TotalProjects.Value)
	require.Equal(t, "Projects (Filtered)", s.TotalProjects.Title)
	require.Equal(t, "1", s.OpenTasks.Value)
	require.Equal(t, "Utilization (Filtered)", s.Utilization.Title)
	require.Equal(t, "25%", s.Utilization.Value)
}

func TestCompute_ZeroCapacityGuard(t *testing.T) {
	full := hydrate.Tables{
		table.KindPerson: {
			{Fields: map[string]any{"User_id": "X1", "weekly_capacity": float64(0)}},
		},
		table.KindTask: {},
	}
	s := metrics.Compute(cascade.DisplaySet{}, cascade.None, cascade.ModeFounder, full, "")
	require.Equal(t, "0%", s.Utilization.Value)

	empty := metrics.Compute(cascade.DisplaySet{}, cascade.Filter{Kind: cascade.FilterUnit, ID: "U1"}, cascade.ModeFounder, full, "")
	require.Equal(t, "0%", empty.Utilization.Value)
}

func TestCompute_NonFiniteLoggedHoursStayOutOfUtilization(t *testing.T) {
	// "NaN" passes strconv.ParseFloat; it must still count as 0 so the
	// percentage never turns into a garbage integer rendering.
	full := hydrate.Tables{
		table.KindPerson: {
			{Fields: map[string]any{"User_id": "X1", "full_name": "Ada Park", "weekly_capacity": float64(40)}},
		},
		table.KindTask: {
			{Fields: map[string]any{"task_id": "T1", "assignee_User_id": "X1", "status": "Open", "logged_hours": float64(10)}},
			{Fields: map[string]any{"task_id": "T2", "assignee_User_id": "X1", "status": "Open", "logged_hours": "NaN"}},
			{Fields: map[string]any{"task_id": "T3", "assignee_User_id": "X1", "status": "Open", "logged_hours": "Inf"}},
		},
	}

	s := metrics.Compute(cascade.DisplaySet{}, cascade.None, cascade.ModeFounder, full, "X1")
	require.Equal(t, "25%", s.Utilization.Value)
}

func TestTeamLoads(t *testing.T) {
	full := fullTables()
	loads := metrics.TeamLoads(full[table.KindPerson], full[table.KindTask])

	require.Len(t, loads, 2)
	// X1: (20+8)/40 -> 70%.
	require.Equal(t, metrics.PersonLoad{PersonID: "X1", Name: "Ada Park", Utilization: 70}, loads[0])
	// X2 has a task with no estimate.
	require.Equal(t, 0, loads[1].Utilization)
}

func TestTeamLoads_DefaultCapacity(t *testing.T) {
	people := table.Table{{Fields: map[string]any{"User_id": "X9", "full_name": "No Cap"}}}
	tasks := table.Table{{Fields: map[string]any{"task_id": "T9", "assignee_User_id": "X9", "estimated_hours": float64(10)}}}

	loads := metrics.TeamLoads(people, tasks)
	require.Len(t, loads, 1)
	require.Equal(t, 25, loads[0].Utilization, "capacity defaults to 40")
}

func TestCards_OrderPreferenceWithFallback(t *testing.T) {
	s := metrics.Compute(cascade.DisplaySet{}, cascade.None, cascade.ModeFounder, fullTables(), "")

	cards := s.Cards([]string{metrics.KeyUtilization, "bogus-key", metrics.KeyOpenTasks})
	require.Len(t, cards, 4)
	require.Equal(t, metrics.KeyUtilization, cards[0].Key)
	require.Equal(t, metrics.KeyOpenTasks, cards[1].Key)
	require.Equal(t, metrics.KeyTotalProjects, cards[2].Key)
	require.Equal(t, metrics.KeyProjectsAtRisk, cards[3].Key)

	defaults := s.Cards(nil)
	require.Equal(t, metrics.KeyTotalProjects, defaults[0].Key)
}
