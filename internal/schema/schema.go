// Package schema is the single source of truth for the warehouse star
// schema: a small backend-agnostic table model plus the fixed definitions
// of the six dimension tables and the fact table. Storage backends render
// this model into their own DDL dialect; the bulk loader reads the column
// kinds to drive per-cell type coercion.
package schema

// Column kinds. Dialects map these onto concrete SQL types; the loader
// maps them onto cell coercers.
const (
	KindInt     = "int"     // integer, including surrogate keys
	KindText    = "text"    // free text; Size caps VARCHAR dialects
	KindDouble  = "double"  // floating point (coordinates)
	KindDecimal = "decimal" // fixed-precision money, 2 decimal places
	KindBool    = "bool"    // occupancy flags
	KindDate    = "date"    // calendar date, persisted as YYYY-MM-DD
)

// Column describes one warehouse column.
type Column struct {
	Name       string
	Kind       string
	Size       int // optional length hint for text columns
	NotNull    bool
	PrimaryKey bool
}

// ForeignKey declares that Column references RefTable(RefColumn).
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Table is one warehouse table definition. Unique lists the columns of the
// table-level uniqueness constraint; Indexes lists columns that get a
// plain secondary index.
type Table struct {
	Name        string
	Columns     []Column
	Unique      []string
	ForeignKeys []ForeignKey
	Indexes     []string
}

// Column returns the definition of the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the table's column names in definition order, which
// is also the persisted CSV column order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Tables lists the warehouse tables in load order: dimensions first, fact
// last so its foreign keys resolve. Drop happens in reverse.
var Tables = []Table{
	{
		Name: "location_dim_table",
		Columns: []Column{
			{Name: "location_id", Kind: KindInt, PrimaryKey: true},
			{Name: "city", Kind: KindText, Size: 100},
			{Name: "state", Kind: KindText, Size: 50},
			{Name: "zip_code", Kind: KindText, Size: 20},
			{Name: "county", Kind: KindText, Size: 100},
			{Name: "longitude", Kind: KindDouble},
			{Name: "latitude", Kind: KindDouble},
		},
		Unique: []string{"city", "state", "zip_code", "county", "longitude", "latitude"},
	},
	{
		Name: "property_dim_table",
		Columns: []Column{
			{Name: "property_id", Kind: KindInt, PrimaryKey: true},
			{Name: "property_code", Kind: KindText, Size: 50, NotNull: true},
			{Name: "property_address", Kind: KindText, Size: 255, NotNull: true},
			{Name: "property_type", Kind: KindText, Size: 50},
			{Name: "bedrooms", Kind: KindInt},
			{Name: "bathrooms", Kind: KindInt},
			{Name: "square_footage", Kind: KindInt},
			{Name: "year_built", Kind: KindInt},
			{Name: "lot_size", Kind: KindInt},
		},
		Unique: []string{"property_code", "property_address", "property_type", "bedrooms", "bathrooms", "square_footage", "year_built", "lot_size"},
	},
	{
		Name: "agent_dim_table",
		Columns: []Column{
			{Name: "agent_id", Kind: KindInt, PrimaryKey: true},
			{Name: "agent_name", Kind: KindText, Size: 255, NotNull: true},
			{Name: "agent_phone", Kind: KindText, Size: 20},
			{Name: "agent_email", Kind: KindText, Size: 255},
		},
		Unique: []string{"agent_name", "agent_phone", "agent_email"},
	},
	{
		Name: "owner_dim_table",
		Columns: []Column{
			{Name: "owner_id", Kind: KindInt, PrimaryKey: true},
			{Name: "owner_names", Kind: KindText, Size: 500, NotNull: true},
			{Name: "owner_type", Kind: KindText, Size: 100},
			{Name: "owner_occupied", Kind: KindBool},
		},
		Unique: []string{"owner_names", "owner_type", "owner_occupied"},
	},
	{
		Name: "office_dim_table",
		Columns: []Column{
			{Name: "office_id", Kind: KindInt, PrimaryKey: true},
			{Name: "listing_office_name", Kind: KindText, Size: 255, NotNull: true},
			{Name: "listing_office_phone", Kind: KindText, Size: 20},
			{Name: "listing_office_email", Kind: KindText, Size: 255},
			{Name: "listing_office_website", Kind: KindText, Size: 255},
		},
		Unique: []string{"listing_office_name", "listing_office_phone", "listing_office_email", "listing_office_website"},
	},
	{
		Name: "listing_dim_table",
		Columns: []Column{
			{Name: "listing_id", Kind: KindInt, PrimaryKey: true},
			{Name: "listing_code", Kind: KindText, Size: 50, NotNull: true},
			{Name: "listing_type", Kind: KindText, Size: 50},
		},
		Unique: []string{"listing_code", "listing_type"},
	},
	{
		Name: "fact_dim_table",
		Columns: []Column{
			{Name: "fact_id", Kind: KindInt, PrimaryKey: true},
			{Name: "property_id", Kind: KindInt, NotNull: true},
			{Name: "owner_id", Kind: KindInt},
			{Name: "location_id", Kind: KindInt},
			{Name: "agent_id", Kind: KindInt},
			{Name: "office_id", Kind: KindInt},
			{Name: "listing_id", Kind: KindInt},
			{Name: "status", Kind: KindText, Size: 50},
			{Name: "price", Kind: KindDecimal},
			{Name: "listing_type", Kind: KindText, Size: 50},
			{Name: "listed_date", Kind: KindDate},
			{Name: "last_sale_date", Kind: KindDate},
			{Name: "removed_date", Kind: KindDate},
			{Name: "created_date", Kind: KindDate},
			{Name: "last_seen_date", Kind: KindDate},
			{Name: "last_sale_price", Kind: KindDecimal},
			{Name: "property_type", Kind: KindText, Size: 100},
		},
		ForeignKeys: []ForeignKey{
			{Column: "property_id", RefTable: "property_dim_table", RefColumn: "property_id"},
			{Column: "owner_id", RefTable: "owner_dim_table", RefColumn: "owner_id"},
			{Column: "location_id", RefTable: "location_dim_table", RefColumn: "location_id"},
			{Column: "agent_id", RefTable: "agent_dim_table", RefColumn: "agent_id"},
			{Column: "office_id", RefTable: "office_dim_table", RefColumn: "office_id"},
			{Column: "listing_id", RefTable: "listing_dim_table", RefColumn: "listing_id"},
		},
		Indexes: []string{"property_id", "owner_id", "location_id", "agent_id", "office_id", "listing_id", "status", "listed_date"},
	},
}

// TableByName returns the definition for name, or nil.
func TableByName(name string) *Table {
	for i := range Tables {
		if Tables[i].Name == name {
			return &Tables[i]
		}
	}
	return nil
}
