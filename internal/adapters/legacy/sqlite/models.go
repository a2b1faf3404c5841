package sqlite

import "time"

// Tablas del export SQLite de la app anterior.

type legacyPlan struct {
	CycleID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (legacyPlan) TableName() string { return "legacy_plans" }

type legacyPlanEntry struct {
	ID           string `gorm:"primaryKey"`
	CycleID      string `gorm:"index"`
	Position     int
	Name         string
	Dosage       string
	Time         string
	Hour         string
	Minute       string
	Meridiem     string
	Refrigerated bool
	StartDay     int
	EndDay       int
	Notes        string
}

func (legacyPlanEntry) TableName() string { return "legacy_plan_entries" }

type legacyDay struct {
	ID       string `gorm:"primaryKey"`
	CycleID  string `gorm:"index"`
	CycleDay int
	Date     *time.Time
}

func (legacyDay) TableName() string { return "legacy_days" }

type legacyAdherence struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	DayID            string `gorm:"index"`
	RecurringEntryID string
	Taken            bool
	Skipped          bool
	ActualDosage     string
	TakenAt          *time.Time
	Notes            string
}

func (legacyAdherence) TableName() string { return "legacy_adherence" }

type legacyOneTime struct {
	ID           string `gorm:"primaryKey"`
	DayID        string `gorm:"index"`
	Name         string
	Dosage       string
	Time         string
	Hour         string
	Minute       string
	Meridiem     string
	Refrigerated bool
	Taken        bool
	Skipped      bool
	TakenAt      *time.Time
	Notes        string
}

func (legacyOneTime) TableName() string { return "legacy_one_time" }

type legacyEmbedded struct {
	ID        string `gorm:"primaryKey"`
	DayID     string `gorm:"index"`
	Name      string
	Dose      string
	Time      string
	Completed bool
	Skipped   bool
	Notes     string
}

func (legacyEmbedded) TableName() string { return "legacy_embedded" }

func allModels() []any {
	return []any{
		&legacyPlan{},
		&legacyPlanEntry{},
		&legacyDay{},
		&legacyAdherence{},
		&legacyOneTime{},
		&legacyEmbedded{},
	}
}
