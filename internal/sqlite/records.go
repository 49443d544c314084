package sqlite

import "github.com/mesh-intelligence/campus/pkg/types"

// Column layouts of the record tables. Column names match the db tags of
// the record structs so sqlx can scan rows directly.

var articlesDef = tableDef[int64, *types.Article]{
	schema:    types.ArticleSchema,
	keyColumn: "id",
	columns:   []string{"title", "url", "explanation", "email", "date_added"},
	values: func(a *types.Article) []any {
		return []any{a.Title, a.URL, a.Explanation, a.Email, a.DateAdded}
	},
}

var recommendationRequestsDef = tableDef[int64, *types.RecommendationRequest]{
	schema:    types.RecommendationRequestSchema,
	keyColumn: "id",
	columns: []string{
		"requester_email", "professor_email", "explanation",
		"date_requested", "date_needed", "done",
	},
	values: func(r *types.RecommendationRequest) []any {
		return []any{
			r.RequesterEmail, r.ProfessorEmail, r.Explanation,
			r.DateRequested, r.DateNeeded, r.Done,
		}
	},
}

var menuItemsDef = tableDef[int64, *types.MenuItem]{
	schema:    types.MenuItemSchema,
	keyColumn: "id",
	columns:   []string{"dining_commons_code", "name", "station"},
	values: func(m *types.MenuItem) []any {
		return []any{m.DiningCommonsCode, m.Name, m.Station}
	},
}

var organizationsDef = tableDef[string, *types.Organization]{
	schema:    types.OrganizationSchema,
	keyColumn: "org_code",
	columns:   []string{"org_translation_short", "org_translation", "inactive"},
	values: func(o *types.Organization) []any {
		return []any{o.OrgTranslationShort, o.OrgTranslation, o.Inactive}
	},
}
