// Package cascade derives the mutually-filtered display subsets of every
// entity kind from a single active selection. The engine is a pure
// function of (hydrated tables, filter, view mode, current person) with
// no ambient state: repeated evaluation with identical inputs yields
// identical output.
package cascade

import (
	"strings"

	"github.com/opsdeck/opsdeck/internal/hydrate"
	"github.com/opsdeck/opsdeck/internal/table"
)

// DisplaySet is the tuple the presentation layer renders. Subsets are
// always mutually consistent under the active filter and view mode.
type DisplaySet struct {
	Projects table.Table `json:"projects"`
	Tasks    table.Table `json:"tasks"`
	People   table.Table `json:"people"`
	Units    table.Table `json:"units"`
}

// Highlight marks which single record of each kind the active selection
// points at, independent of which records the display set includes.
type Highlight struct {
	ProjectID *string `json:"projectId"`
	TaskID    *string `json:"taskId"`
	PersonID  *string `json:"personId"`
	UnitID    *string `json:"unitId"`
}

// Result bundles everything one evaluation produces.
type Result struct {
	Display     DisplaySet `json:"display"`
	Highlight   Highlight  `json:"highlight"`
	TaskTitle   string     `json:"taskTitle"`
	FilterLabel string     `json:"filterLabel"`
}

var taskStatusCandidates = []string{"status", "Status", "task_status"}

// Evaluate computes the display set, highlight map and titles for one
// filter state. A filter naming an id with no matching record fails open
// to the unfiltered founder view rather than erroring or going blank.
func Evaluate(tables hydrate.Tables, f Filter, mode ViewMode, currentPersonID string) Result {
	if f.IsNone() {
		return evalNone(tables, mode, currentPersonID)
	}
	switch f.Kind {
	case FilterUnit:
		if unit, ok := table.FindByID(tables[table.KindUnit], table.KindUnit, f.ID); ok {
			return evalUnit(tables, f.ID, unit)
		}
	case FilterProject:
		if proj, ok := table.FindByID(tables[table.KindProject], table.KindProject, f.ID); ok {
			return evalProject(tables, f.ID, proj)
		}
	case FilterTask:
		if task, ok := table.FindByID(tables[table.KindTask], table.KindTask, f.ID); ok {
			return evalTask(tables, f.ID, task, mode, currentPersonID)
		}
	case FilterPerson:
		if person, ok := table.FindByID(tables[table.KindPerson], table.KindPerson, f.ID); ok {
			return evalPerson(tables, f.ID, person)
		}
	}
	return evalNone(tables, ModeFounder, currentPersonID)
}

func evalNone(tables hydrate.Tables, mode ViewMode, currentPersonID string) Result {
	if mode == ModeTeam {
		projects := projectsOwnedBy(tables[table.KindProject], currentPersonID)
		tasks := openOnly(tasksAssignedTo(tables[table.KindTask], currentPersonID))
		var people table.Table
		if me, ok := table.FindByID(tables[table.KindPerson], table.KindPerson, currentPersonID); ok {
			people = table.Table{me}
		}
		return Result{
			Display: DisplaySet{
				Projects: projects,
				Tasks:    tasks,
				People:   people,
				Units:    unitsContaining(tables[table.KindUnit], projects),
			},
			TaskTitle: "My Open Tasks",
		}
	}
	return Result{
		Display: DisplaySet{
			Projects: tables[table.KindProject],
			Tasks:    openOnly(tables[table.KindTask]),
			People:   tables[table.KindPerson],
			Units:    tables[table.KindUnit],
		},
		TaskTitle: "All Open Tasks",
	}
}

func evalUnit(tables hydrate.Tables, id string, unit table.Record) Result {
	projects := projectsInUnit(tables[table.KindProject], id)
	tasks := openOnly(tasksInProjects(tables[table.KindTask], idSet(projects, table.KindProject)))

	involved := make(map[string]bool)
	for _, p := range projects {
		if owner := ownerID(p); owner != "" {
			involved[owner] = true
		}
	}
	for _, t := range tasks {
		if assignee := assigneeID(t); assignee != "" {
			involved[assignee] = true
		}
	}

	return Result{
		Display: DisplaySet{
			Projects: projects,
			Tasks:    tasks,
			People:   peopleByID(tables[table.KindPerson], involved),
			Units:    tables[table.KindUnit],
		},
		Highlight:   Highlight{UnitID: &id},
		TaskTitle:   "Open Tasks in Unit",
		FilterLabel: "Unit: " + nameOr(unit, table.KindUnit, id),
	}
}

func evalProject(tables hydrate.Tables, id string, proj table.Record) Result {
	// A selected project shows all of its tasks regardless of status,
	// unlike the unit branch. Existing callers depend on this.
	tasks := tasksInProjects(tables[table.KindTask], map[string]bool{id: true})

	involved := make(map[string]bool)
	for _, t := range tasks {
		if assignee := assigneeID(t); assignee != "" {
			involved[assignee] = true
		}
	}
	owner := ownerID(proj)
	if owner != "" {
		involved[owner] = true
	}

	hl := Highlight{ProjectID: &id}
	if owner != "" {
		hl.PersonID = &owner
	}
	if unitID := table.ResolveString(proj, []string{"business_unit_id", "bu_id"}); unitID != "" {
		hl.UnitID = &unitID
	}

	return Result{
		Display: DisplaySet{
			Projects: tables[table.KindProject],
			Tasks:    tasks,
			People:   peopleByID(tables[table.KindPerson], involved),
			Units:    tables[table.KindUnit],
		},
		Highlight:   hl,
		TaskTitle:   "Tasks in " + nameOr(proj, table.KindProject, id),
		FilterLabel: "Project: " + nameOr(proj, table.KindProject, id),
	}
}

func evalTask(tables hydrate.Tables, id string, task table.Record, mode ViewMode, currentPersonID string) Result {
	// A task selection only highlights: the task list stays the
	// mode-selected base list and every other collection stays full.
	base := evalNone(tables, mode, currentPersonID)

	hl := Highlight{TaskID: &id}
	if assignee := assigneeID(task); assignee != "" {
		hl.PersonID = &assignee
	}
	if projectID := table.ResolveString(task, []string{"Project id", "project_id"}); projectID != "" {
		hl.ProjectID = &projectID
		if proj, ok := table.FindByID(tables[table.KindProject], table.KindProject, projectID); ok {
			if unitID := table.ResolveString(proj, []string{"business_unit_id", "bu_id"}); unitID != "" {
				hl.UnitID = &unitID
			}
		}
	}

	return Result{
		Display: DisplaySet{
			Projects: tables[table.KindProject],
			Tasks:    base.Display.Tasks,
			People:   tables[table.KindPerson],
			Units:    tables[table.KindUnit],
		},
		Highlight:   hl,
		TaskTitle:   base.TaskTitle,
		FilterLabel: "Task: " + nameOr(task, table.KindTask, id),
	}
}

func evalPerson(tables hydrate.Tables, id string, person table.Record) Result {
	name := nameOr(person, table.KindPerson, id)
	return Result{
		Display: DisplaySet{
			Projects: projectsOwnedBy(tables[table.KindProject], id),
			// All statuses, matching the project branch.
			Tasks:  tasksAssignedTo(tables[table.KindTask], id),
			People: tables[table.KindPerson],
			Units:  tables[table.KindUnit],
		},
		Highlight:   Highlight{PersonID: &id},
		TaskTitle:   "Tasks for " + name,
		FilterLabel: "Person: " + name,
	}
}

// IsOpenTask reports whether a task's status counts as open. Status is
// the only field compared case-insensitively.
func IsOpenTask(rec table.Record) bool {
	status := strings.ToLower(table.ResolveString(rec, taskStatusCandidates))
	return status != "done" && status != "completed"
}

func openOnly(tasks table.Table) table.Table {
	out := make(table.Table, 0, len(tasks))
	for _, t := range tasks {
		if IsOpenTask(t) {
			out = append(out, t)
		}
	}
	return out
}

func projectsOwnedBy(projects table.Table, personID string) table.Table {
	out := make(table.Table, 0)
	if personID == "" {
		return out
	}
	for _, p := range projects {
		if ownerID(p) == personID {
			out = append(out, p)
		}
	}
	return out
}

func projectsInUnit(projects table.Table, unitID string) table.Table {
	out := make(table.Table, 0)
	for _, p := range projects {
		if table.ResolveString(p, []string{"business_unit_id", "bu_id"}) == unitID {
			out = append(out, p)
		}
	}
	return out
}

func tasksAssignedTo(tasks table.Table, personID string) table.Table {
	out := make(table.Table, 0)
	if personID == "" {
		return out
	}
	for _, t := range tasks {
		if assigneeID(t) == personID {
			out = append(out, t)
		}
	}
	return out
}

func tasksInProjects(tasks table.Table, projectIDs map[string]bool) table.Table {
	out := make(table.Table, 0)
	for _, t := range tasks {
		if projectIDs[table.ResolveString(t, []string{"Project id", "project_id"})] {
			out = append(out, t)
		}
	}
	return out
}

// peopleByID keeps the people table's own ordering so the subset is
// deterministic regardless of how the id set was built.
func peopleByID(people table.Table, ids map[string]bool) table.Table {
	out := make(table.Table, 0, len(ids))
	for _, p := range people {
		if ids[table.PrimaryID(p, table.KindPerson)] {
			out = append(out, p)
		}
	}
	return out
}

func unitsContaining(units table.Table, projects table.Table) table.Table {
	unitIDs := make(map[string]bool)
	for _, p := range projects {
		if id := table.ResolveString(p, []string{"business_unit_id", "bu_id"}); id != "" {
			unitIDs[id] = true
		}
	}
	out := make(table.Table, 0, len(unitIDs))
	for _, u := range units {
		if unitIDs[table.PrimaryID(u, table.KindUnit)] {
			out = append(out, u)
		}
	}
	return out
}

func idSet(tbl table.Table, kind table.Kind) map[string]bool {
	ids := make(map[string]bool, len(tbl))
	for _, rec := range tbl {
		if id := table.PrimaryID(rec, kind); id != "" {
			ids[id] = true
		}
	}
	return ids
}

func ownerID(rec table.Record) string {
	return table.ResolveString(rec, []string{"owner_User_id", "owner_id"})
}

func assigneeID(rec table.Record) string {
	return table.ResolveString(rec, []string{"assignee_User_id", "assignee_id"})
}

func nameOr(rec table.Record, kind table.Kind, fallback string) string {
	if name := table.DisplayName(rec, kind); name != "" {
		return name
	}
	return fallback
}
