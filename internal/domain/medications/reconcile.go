package medications

import (
	"sort"
)

// ReconcileDuplicateRecords colapsa los registros que comparten (CycleID, CycleDay).
//
// Base: el más reciente por UpdatedAt ?? CreatedAt; en empate gana el ID mayor.
// Entradas puntuales: unión por ID, la versión del registro mejor rankeado.
// Adherencia recurrente: unión por RecurringEntryID, preferimos el estado
// tocado (taken/skipped) del registro mejor rankeado; si nadie lo tocó, el
// del mejor rankeado.
//
// Un taken/skipped de un duplicado viejo pisa un untouched de la base, aunque
// ese untouched venga de un reset. Las escrituras del servicio reconcilian
// antes de mutar, así que solo pasa con duplicados de escritores externos;
// a cambio nunca se pierde una marca por un registro creado en carrera.
//
// El resultado no depende del orden de entrada y reconciliar el resultado
// devuelve lo mismo. discard son todos los registros distintos de la base.
func ReconcileDuplicateRecords(records []DailyRecord) (DailyRecord, []DailyRecord) {
	if len(records) == 0 {
		return DailyRecord{}, nil
	}

	ranked := make([]DailyRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranksBefore(ranked[i], ranked[j])
	})

	base := ranked[0]
	merged := DailyRecord{
		ID:        base.ID,
		CycleID:   base.CycleID,
		CycleDay:  base.CycleDay,
		Date:      base.Date,
		CreatedAt: base.CreatedAt,
		UpdatedAt: copyTime(base.UpdatedAt),
	}

	// Adherencia recurrente
	adherenceIdx := map[string]int{}
	for _, r := range ranked {
		for _, a := range r.Adherence {
			if a.RecurringEntryID == "" {
				continue
			}
			i, seen := adherenceIdx[a.RecurringEntryID]
			if !seen {
				adherenceIdx[a.RecurringEntryID] = len(merged.Adherence)
				merged.Adherence = append(merged.Adherence, copyAdherence(a))
				continue
			}
			if merged.Adherence[i].Status == StatusUntouched && a.Status != StatusUntouched {
				merged.Adherence[i] = copyAdherence(a)
			}
		}
	}

	// Entradas puntuales
	seenOneTime := map[string]struct{}{}
	for _, r := range ranked {
		for _, e := range r.OneTime {
			if _, ok := seenOneTime[e.ID]; ok {
				continue
			}
			seenOneTime[e.ID] = struct{}{}
			merged.OneTime = append(merged.OneTime, copyOneTime(e))
		}
	}

	discard := make([]DailyRecord, 0, len(ranked)-1)
	for _, r := range ranked[1:] {
		if r.ID == base.ID {
			// mismo registro repetido en la entrada, nada que borrar
			continue
		}
		discard = append(discard, r)
	}

	return merged, discard
}

func ranksBefore(a, b DailyRecord) bool {
	ta, tb := a.LastModified(), b.LastModified()
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return a.ID > b.ID
}

// recordsForKey filtra los registros de un (cycleID, day).
func recordsForKey(cycleID string, day int, records []DailyRecord) []DailyRecord {
	out := make([]DailyRecord, 0, 1)
	for _, r := range records {
		if r.CycleID == cycleID && r.CycleDay == day {
			out = append(out, r)
		}
	}
	return out
}

// recordForDay devuelve el registro (reconciliado en memoria si hay
// duplicados) del día, o nil.
func recordForDay(cycleID string, day int, records []DailyRecord) *DailyRecord {
	matches := recordsForKey(cycleID, day, records)
	switch len(matches) {
	case 0:
		return nil
	case 1:
		return &matches[0]
	}
	merged, _ := ReconcileDuplicateRecords(matches)
	return &merged
}
