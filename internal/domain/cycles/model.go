package cycles

import "time"

// Cycle es un ciclo de tratamiento registrado localmente.
type Cycle struct {
	ID    string
	Label string

	StartDate  time.Time
	LoggedDays []int // ordenados, sin repetidos

	CreatedAt time.Time
	UpdatedAt time.Time
}
