package cycles

import "time"

// Cycle es lo que el motor necesita del ciclo de tratamiento.
type Cycle struct {
	ID         string
	StartDate  time.Time
	LoggedDays []int // índices 1-based de días registrados
}

// DateForDay calcula la fecha de calendario: startDate + (day-1) días.
func (c Cycle) DateForDay(day int) time.Time {
	if c.StartDate.IsZero() || day < 1 {
		return time.Time{}
	}
	return c.StartDate.AddDate(0, 0, day-1)
}
