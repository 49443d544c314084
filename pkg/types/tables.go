package types

// Storage names of the record tables.
const (
	TableArticles               = "articles"
	TableRecommendationRequests = "recommendation_requests"
	TableMenuItems              = "menu_items"
	TableOrganizations          = "organizations"
)

// StandardTableNames lists all table names for enumeration.
var StandardTableNames = []string{
	TableArticles,
	TableRecommendationRequests,
	TableMenuItems,
	TableOrganizations,
}
