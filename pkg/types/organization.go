package types

// Organization is a student organization identified by its short code.
// Unlike the other records its key is natural: OrgCode is chosen by the
// caller on creation.
type Organization struct {
	OrgCode             string `json:"orgCode" db:"org_code"`
	OrgTranslationShort string `json:"orgTranslationShort" db:"org_translation_short"`
	OrgTranslation      string `json:"orgTranslation" db:"org_translation"`
	Inactive            bool   `json:"inactive" db:"inactive"`
}

func (o *Organization) RecordKey() string        { return o.OrgCode }
func (o *Organization) SetRecordKey(code string) { o.OrgCode = code }

// OrganizationSchema describes how backends store organizations.
var OrganizationSchema = Schema[string, *Organization]{
	Table: TableOrganizations,
	New:   func() *Organization { return &Organization{} },
}
