package scheduling

import "sort"

// TypeCatalog maps an appointment-type name to its required duration in
// minutes. It is plain data so new types can be added without touching
// engine logic.
type TypeCatalog map[string]int

// DefaultTypeCatalog returns the standard clinic offering.
func DefaultTypeCatalog() TypeCatalog {
	return TypeCatalog{
		"General Consultation":    30,
		"Follow-up":               15,
		"Physical Exam":           45,
		"Specialist Consultation": 60,
	}
}

// Duration returns the required duration for a type, or ok=false if the
// type is not offered.
func (c TypeCatalog) Duration(appointmentType string) (int, bool) {
	d, ok := c[appointmentType]
	return d, ok
}

// Names returns the offered type names in stable order, for prompts and
// tool schemas.
func (c TypeCatalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
