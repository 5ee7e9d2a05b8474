package scrape

// Layout names the td columns of a DATA row by position. Transforms are
// looked up by these names, never by index.
type Layout []string

// Column layouts of the supported list pages.
var (
	FalconLayout = Layout{"time", "rocket", "site", "mission", "mass", "orbit"}
	WorldLayout  = Layout{"time", "rocket", "mission", "site", "org"}
)

// Fields holds the cells of one row keyed by column name.
type Fields map[string]Cell

// Bind pairs cells with column names. Columns beyond the end of a short row
// are left blank; cells beyond the layout are dropped.
func (l Layout) Bind(cells []Cell) Fields {
	fields := make(Fields, len(l))
	for i, name := range l {
		if i < len(cells) {
			fields[name] = cells[i]
		} else {
			fields[name] = Cell{}
		}
	}
	return fields
}

// Info returns the info part of the named column.
func (f Fields) Info(name string) string {
	return f[name].Info
}
