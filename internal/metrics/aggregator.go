// Package metrics computes the KPI values shown above the dashboard
// tables. All numeric aggregation coerces through a float parse that
// treats failure as zero, so a missing or junk source field can never
// surface as NaN in a displayed metric.
package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/opsdeck/opsdeck/internal/cascade"
	"github.com/opsdeck/opsdeck/internal/hydrate"
	"github.com/opsdeck/opsdeck/internal/table"
)

// KPI is one card value with its mode/filter-aware title.
type KPI struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Summary is the full KPI bundle for one evaluation.
type Summary struct {
	TotalProjects  KPI `json:"totalProjects"`
	ProjectsAtRisk KPI `json:"projectsAtRisk"`
	OpenTasks      KPI `json:"openTasks"`
	Utilization    KPI `json:"utilization"`
}

// PersonLoad is one row of the team-activity view.
type PersonLoad struct {
	PersonID    string `json:"personId"`
	Name        string `json:"name"`
	Utilization int    `json:"utilization"`
}

// Card keys, also the vocabulary of the persisted card-order preference.
const (
	KeyTotalProjects  = "total_projects"
	KeyProjectsAtRisk = "projects_at_risk"
	KeyOpenTasks      = "open_tasks"
	KeyUtilization    = "utilization"
)

// DefaultCardOrder is used when no preference is stored or the stored
// one is corrupt.
var DefaultCardOrder = []string{KeyTotalProjects, KeyProjectsAtRisk, KeyOpenTasks, KeyUtilization}

var (
	projectStatusCandidates = []string{"Status", "status", "project_status"}
	loggedHoursCandidates   = []string{"logged_hours", "Logged Hours", "hours_logged"}
	estimatedCandidates     = []string{"estimated_hours", "est_hours", "Estimated Hours"}
	capacityCandidates      = []string{"weekly_capacity", "capacity_hours", "capacity"}
)

const defaultWeeklyCapacity = 40

// Compute aggregates KPIs from the metrics-relevant sets. With a filter
// active the display set is used as-is (its tasks are already trimmed by
// the cascade); with no filter, team mode uses the signed-in person's
// own unfiltered totals and founder mode uses everything.
func Compute(display cascade.DisplaySet, f cascade.Filter, mode cascade.ViewMode, full hydrate.Tables, currentPersonID string) Summary {
	filtered := !f.IsNone()

	var projects, tasks, people table.Table
	switch {
	case filtered:
		projects = display.Projects
		tasks = display.Tasks
		people = display.People
	case mode == cascade.ModeTeam:
		projects = ownedBy(full[table.KindProject], currentPersonID)
		tasks = openAssignedTo(full[table.KindTask], currentPersonID)
		if me, ok := table.FindByID(full[table.KindPerson], table.KindPerson, currentPersonID); ok {
			people = table.Table{me}
		}
	default:
		projects = full[table.KindProject]
		tasks = openTasks(full[table.KindTask])
		people = full[table.KindPerson]
	}

	atRisk := 0
	for _, p := range projects {
		if strings.EqualFold(table.ResolveString(p, projectStatusCandidates), "at risk") {
			atRisk++
		}
	}

	return Summary{
		TotalProjects:  KPI{Key: KeyTotalProjects, Title: title("My Projects", "Total Projects", "Projects (Filtered)", mode, filtered), Value: fmt.Sprintf("%d", len(projects))},
		ProjectsAtRisk: KPI{Key: KeyProjectsAtRisk, Title: title("My Projects at Risk", "Projects at Risk", "At Risk (Filtered)", mode, filtered), Value: fmt.Sprintf("%d", atRisk)},
		OpenTasks:      KPI{Key: KeyOpenTasks, Title: title("My Open Tasks", "Open Tasks", "Open Tasks (Filtered)", mode, filtered), Value: fmt.Sprintf("%d", len(tasks))},
		Utilization:    KPI{Key: KeyUtilization, Title: title("My Utilization", "Team Utilization", "Utilization (Filtered)", mode, filtered), Value: utilization(tasks, people)},
	}
}

// Cards returns the summary as a slice in the given preference order.
// Unknown keys are skipped, omitted known keys are appended in default
// order, so a stale preference can never drop a card.
func (s Summary) Cards(order []string) []KPI {
	byKey := map[string]KPI{
		KeyTotalProjects:  s.TotalProjects,
		KeyProjectsAtRisk: s.ProjectsAtRisk,
		KeyOpenTasks:      s.OpenTasks,
		KeyUtilization:    s.Utilization,
	}
	out := make([]KPI, 0, len(byKey))
	seen := make(map[string]bool, len(byKey))
	for _, key := range order {
		if kpi, ok := byKey[key]; ok && !seen[key] {
			out = append(out, kpi)
			seen[key] = true
		}
	}
	for _, key := range DefaultCardOrder {
		if !seen[key] {
			out = append(out, byKey[key])
		}
	}
	return out
}

// TeamLoads computes per-person utilization for the team-activity view:
// the share of a person's weekly capacity covered by their assigned
// tasks' estimated hours. Capacity defaults to 40 when absent.
func TeamLoads(people, tasks table.Table) []PersonLoad {
	out := make([]PersonLoad, 0, len(people))
	for _, p := range people {
		id := table.PrimaryID(p, table.KindPerson)
		if id == "" {
			continue
		}
		capacity := table.ResolveFloat(p, capacityCandidates)
		if capacity <= 0 {
			capacity = defaultWeeklyCapacity
		}
		est := 0.0
		for _, t := range tasks {
			if table.ResolveString(t, []string{"assignee_User_id", "assignee_id"}) == id {
				est += table.ResolveFloat(t, estimatedCandidates)
			}
		}
		out = append(out, PersonLoad{
			PersonID:    id,
			Name:        table.DisplayName(p, table.KindPerson),
			Utilization: int(math.Round(100 * est / capacity)),
		})
	}
	return out
}

// utilization renders team utilization as a percent string. Zero total
// capacity yields the literal "0%", never NaN or a division error.
func utilization(tasks, people table.Table) string {
	capacity := 0.0
	for _, p := range people {
		capacity += table.ResolveFloat(p, capacityCandidates)
	}
	if capacity == 0 {
		return "0%"
	}
	logged := 0.0
	for _, t := range tasks {
		logged += table.ResolveFloat(t, loggedHoursCandidates)
	}
	return fmt.Sprintf("%d%%", int(math.Round(100*logged/capacity)))
}

func title(my, all, filtered string, mode cascade.ViewMode, isFiltered bool) string {
	if isFiltered {
		return filtered
	}
	if mode == cascade.ModeTeam {
		return my
	}
	return all
}

func openTasks(tasks table.Table) table.Table {
	out := make(table.Table, 0, len(tasks))
	for _, t := range tasks {
		if cascade.IsOpenTask(t) {
			out = append(out, t)
		}
	}
	return out
}

func openAssignedTo(tasks table.Table, personID string) table.Table {
	out := make(table.Table, 0)
	if personID == "" {
		return out
	}
	for _, t := range tasks {
		if table.ResolveString(t, []string{"assignee_User_id", "assignee_id"}) == personID && cascade.IsOpenTask(t) {
			out = append(out, t)
		}
	}
	return out
}

func ownedBy(projects table.Table, personID string) table.Table {
	out := make(table.Table, 0)
	if personID == "" {
		return out
	}
	for _, p := range projects {
		if table.ResolveString(p, []string{"owner_User_id", "owner_id"}) == personID {
			out = append(out, p)
		}
	}
	return out
}
