package migration

import "strconv"

// Deduplicate agrupa por (cycle, día, nombre, hora, tipo) y conserva la
// primera ocurrencia. Devuelve cuántas descartó.
func Deduplicate(meds []Medication) ([]Medication, int) {
	seen := make(map[string]struct{}, len(meds))
	out := make([]Medication, 0, len(meds))
	for _, m := range meds {
		k := m.CycleID + "\x00" + strconv.Itoa(m.CycleDay) + "\x00" + m.Name + "\x00" + m.Time + "\x00" + string(m.Type)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out, len(meds) - len(out)
}
