package viewer

// =============================================================================
// TABLE <-> LEGACY STATEMENT CONVERSION
// =============================================================================

// Flatten converts a statement table into its legacy flattened form: each
// row's cells become a slice parallel to the table's periods. The conversion
// preserves row count, concept identifiers, and cell values.
func (t *StatementTable) Flatten() *Statement {
	s := &Statement{
		RoleID:    t.RoleID,
		RoleURI:   t.RoleURI,
		Name:      t.Name,
		ShortName: t.ShortName,
		Type:      t.Type,
		Periods:   append([]Period(nil), t.Periods...),
	}
	for _, row := range t.Rows {
		flat := FlatRow{
			Label:              row.Label,
			Concept:            row.Concept,
			Abstract:           row.Abstract,
			Depth:              row.Depth,
			PreferredLabelRole: row.PreferredLabelRole,
			Order:              row.Order,
			ParentPath:         append([]string(nil), row.ParentPath...),
			Dimensions:         append(DimensionSignature(nil), row.Dimensions...),
			Cells:              make([]Cell, 0, len(t.Periods)),
		}
		for _, p := range t.Periods {
			cell, ok := row.Cells[p.Key()]
			if !ok {
				cell = PlaceholderCell(p)
			}
			flat.Cells = append(flat.Cells, cell)
		}
		s.Rows = append(s.Rows, flat)
	}
	return s
}

// Unflatten restores a statement table from its legacy flattened form.
func Unflatten(s *Statement) *StatementTable {
	t := &StatementTable{
		RoleID:    s.RoleID,
		RoleURI:   s.RoleURI,
		Name:      s.Name,
		ShortName: s.ShortName,
		Type:      s.Type,
		Periods:   append([]Period(nil), s.Periods...),
	}
	for _, flat := range s.Rows {
		row := &StatementRow{
			Label:              flat.Label,
			Concept:            flat.Concept,
			Abstract:           flat.Abstract,
			Depth:              flat.Depth,
			PreferredLabelRole: flat.PreferredLabelRole,
			Order:              flat.Order,
			ParentPath:         append([]string(nil), flat.ParentPath...),
			Dimensions:         append(DimensionSignature(nil), flat.Dimensions...),
			Cells:              make(map[string]Cell, len(flat.Cells)),
		}
		for _, cell := range flat.Cells {
			row.Cells[cell.Period.Key()] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// IsEmpty reports whether every non-abstract row of the table holds only
// placeholder cells.
func (t *StatementTable) IsEmpty() bool {
	for _, row := range t.Rows {
		if row.Abstract {
			continue
		}
		for _, cell := range row.Cells {
			if cell.RawValue != nil || (cell.Value != "" && cell.Value != Placeholder) {
				return false
			}
		}
	}
	return true
}
