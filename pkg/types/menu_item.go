package types

// MenuItem is a dish served at a station of a dining commons.
type MenuItem struct {
	ID                int64  `json:"id" db:"id"`
	DiningCommonsCode string `json:"diningCommonsCode" db:"dining_commons_code"`
	Name              string `json:"name" db:"name"`
	Station           string `json:"station" db:"station"`
}

func (m *MenuItem) RecordKey() int64      { return m.ID }
func (m *MenuItem) SetRecordKey(id int64) { m.ID = id }

// MenuItemSchema describes how backends store menu items.
var MenuItemSchema = Schema[int64, *MenuItem]{
	Table:    TableMenuItems,
	New:      func() *MenuItem { return &MenuItem{} },
	Sequence: Int64Sequence,
}
