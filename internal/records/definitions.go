// Package records defines the campus record resources and assembles them
// over a repository.
package records

import (
	"github.com/mesh-intelligence/campus/internal/resource"
	"github.com/mesh-intelligence/campus/pkg/types"
)

var Articles = resource.Definition[int64, *types.Article]{
	TypeName: "Articles",
	Path:     "articles",
	KeyParam: "id",
	Schema:   types.ArticleSchema,
	ParseKey: resource.ParseInt64Key,
	FromForm: func(f *resource.Form) *types.Article {
		return &types.Article{
			Title:       f.String("title"),
			URL:         f.String("url"),
			Explanation: f.String("explanation"),
			Email:       f.String("email"),
			DateAdded:   f.LocalDateTime("dateAdded"),
		}
	},
}

var RecommendationRequests = resource.Definition[int64, *types.RecommendationRequest]{
	TypeName: "RecommendationRequest",
	Path:     "recommendationrequests",
	KeyParam: "id",
	Schema:   types.RecommendationRequestSchema,
	ParseKey: resource.ParseInt64Key,
	FromForm: func(f *resource.Form) *types.RecommendationRequest {
		return &types.RecommendationRequest{
			RequesterEmail: f.String("requesterEmail"),
			ProfessorEmail: f.String("professorEmail"),
			Explanation:    f.String("explanation"),
			DateRequested:  f.LocalDateTime("dateRequested"),
			DateNeeded:     f.LocalDateTime("dateNeeded"),
			Done:           f.Bool("done"),
		}
	},
}

var MenuItems = resource.Definition[int64, *types.MenuItem]{
	TypeName: "UCSBDiningCommonsMenuItem",
	Path:     "ucsbdiningcommonsmenuitem",
	KeyParam: "id",
	Schema:   types.MenuItemSchema,
	ParseKey: resource.ParseInt64Key,
	FromForm: func(f *resource.Form) *types.MenuItem {
		return &types.MenuItem{
			DiningCommonsCode: f.String("diningCommonsCode"),
			Name:              f.String("name"),
			Station:           f.String("station"),
		}
	},
}

var Organizations = resource.Definition[string, *types.Organization]{
	TypeName: "UCSBOrganization",
	Path:     "ucsborganization",
	KeyParam: "orgCode",
	Schema:   types.OrganizationSchema,
	ParseKey: resource.ParseStringKey,
	FromForm: func(f *resource.Form) *types.Organization {
		return &types.Organization{
			OrgCode:             f.String("orgCode"),
			OrgTranslationShort: f.String("orgTranslationShort"),
			OrgTranslation:      f.String("orgTranslation"),
			Inactive:            f.Bool("inactive"),
		}
	},
}
