package table

// RefField describes one foreign-key-shaped field on an entity kind.
// Field is the canonical name used for the synthesized "_resolved"
// companion; Candidates covers the spellings seen across dataset
// variants. A non-empty RelationKey additionally attaches the referenced
// record itself under that key, for callers that need sub-fields rather
// than a display string.
type RefField struct {
	Field       string
	Candidates  []string
	Target      Kind
	RelationKey string
}

// Schema is the explicit candidate-name table for one entity kind.
// Lookups are table-driven on purpose: no reflection, and a new dataset
// variant is handled by adding a candidate, not code.
type Schema struct {
	Kind           Kind
	IDCandidates   []string
	NameCandidates []string
	Refs           []RefField
}

var schemas = map[Kind]Schema{
	KindProject: {
		Kind:           KindProject,
		IDCandidates:   []string{"project_id", "Project id", "id"},
		NameCandidates: []string{"Project Name", "project_name", "name"},
		Refs: []RefField{
			{Field: "owner_User_id", Candidates: []string{"owner_User_id", "owner_id"}, Target: KindPerson},
			{Field: "business_unit_id", Candidates: []string{"business_unit_id", "bu_id"}, Target: KindUnit},
		},
	},
	KindTask: {
		Kind:           KindTask,
		IDCandidates:   []string{"task_id", "id"},
		NameCandidates: []string{"task_name", "Task Name", "name", "title"},
		Refs: []RefField{
			{Field: "Project id", Candidates: []string{"Project id", "project_id"}, Target: KindProject},
			{Field: "assignee_User_id", Candidates: []string{"assignee_User_id", "assignee_id"}, Target: KindPerson},
		},
	},
	KindPerson: {
		Kind:           KindPerson,
		IDCandidates:   []string{"User_id", "user_id", "id"},
		NameCandidates: []string{"full_name", "name"},
		Refs: []RefField{
			{Field: "manager", Candidates: []string{"manager", "manager_User_id"}, Target: KindPerson, RelationKey: "manager"},
			{Field: "business_unit_id", Candidates: []string{"business_unit_id", "bu_id"}, Target: KindUnit},
		},
	},
	KindUnit: {
		Kind:           KindUnit,
		IDCandidates:   []string{"bu_id", "business_unit_id", "id"},
		NameCandidates: []string{"Unit_Name", "bu_name", "name"},
		Refs: []RefField{
			{Field: "lead", Candidates: []string{"lead", "lead_User_id"}, Target: KindPerson, RelationKey: "lead"},
		},
	},
	KindAccount: {
		Kind:           KindAccount,
		IDCandidates:   []string{"account_id", "id"},
		NameCandidates: []string{"account_name", "Account Name", "name"},
		Refs: []RefField{
			{Field: "owner_User_id", Candidates: []string{"owner_User_id", "owner_id"}, Target: KindPerson},
		},
	},
	KindLead: {
		Kind:           KindLead,
		IDCandidates:   []string{"lead_id", "id"},
		NameCandidates: []string{"lead_name", "full_name", "name"},
		Refs: []RefField{
			{Field: "owner_User_id", Candidates: []string{"owner_User_id", "owner_id"}, Target: KindPerson},
			{Field: "account_id", Candidates: []string{"account_id"}, Target: KindAccount},
		},
	},
	KindOpportunity: {
		Kind:           KindOpportunity,
		IDCandidates:   []string{"opportunity_id", "opp_id", "id"},
		NameCandidates: []string{"opportunity_name", "name"},
		Refs: []RefField{
			{Field: "account_id", Candidates: []string{"account_id"}, Target: KindAccount},
			{Field: "owner_User_id", Candidates: []string{"owner_User_id", "owner_id"}, Target: KindPerson},
		},
	},
	KindHub: {
		Kind:           KindHub,
		IDCandidates:   []string{"hub_id", "id"},
		NameCandidates: []string{"hub_name", "name"},
		Refs: []RefField{
			{Field: "owner_User_id", Candidates: []string{"owner_User_id", "owner_id"}, Target: KindPerson},
		},
	},
}

// SchemaFor returns the candidate-name schema for a kind. Unknown kinds
// get an empty schema, which hydrates to a pass-through.
func SchemaFor(kind Kind) Schema {
	return schemas[kind]
}

// PrimaryID returns a record's canonical identifier as a string, or ""
// when the dataset variant carries no recognizable id column.
func PrimaryID(rec Record, kind Kind) string {
	return ResolveString(rec, schemas[kind].IDCandidates)
}

// DisplayName returns a record's human-readable name via the per-kind
// fallback chain, or "" when none of the candidates are present.
func DisplayName(rec Record, kind Kind) string {
	return ResolveString(rec, schemas[kind].NameCandidates)
}

// FindByID scans a table for the record whose primary id string-compares
// equal to id. Ids may arrive as numbers from the source, so comparison
// always goes through the string coercion.
func FindByID(tbl Table, kind Kind, id string) (Record, bool) {
	if id == "" {
		return Record{}, false
	}
	for _, rec := range tbl {
		if PrimaryID(rec, kind) == id {
			return rec, true
		}
	}
	return Record{}, false
}
