package medications

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(AM|PM)$`)

// TimeKey convierte un reloj de 12h en minutos desde medianoche.
// 12 AM => 0, 12 PM => 720. Un meridiem desconocido cuenta como AM.
func TimeKey(hour, minute int, m Meridiem) int {
	h := hour % 12
	if strings.EqualFold(string(m), string(PM)) {
		h += 12
	}
	return h*60 + minute
}

// FormatClock produce la forma canónica "HH:MM AM|PM".
func FormatClock(hour, minute int, m Meridiem) string {
	mer := PM
	if !strings.EqualFold(string(m), string(PM)) {
		mer = AM
	}
	return fmt.Sprintf("%02d:%02d %s", hour, minute, mer)
}

// ParseClock acepta "8:30 AM", "08:30 PM" o "08:30PM".
func ParseClock(s string) (int, int, Meridiem, error) {
	parts := clockPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if parts == nil {
		return 0, 0, "", fmt.Errorf("invalid clock %q", s)
	}
	hour, _ := strconv.Atoi(parts[1])
	minute, _ := strconv.Atoi(parts[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, 0, "", fmt.Errorf("invalid clock %q", s)
	}
	return hour, minute, Meridiem(parts[3]), nil
}

// ValidClock valida el rango que aceptan las entradas del plan y las
// puntuales: hora 1..12 y minutos en cuartos de hora.
func ValidClock(hour, minute int, m Meridiem) bool {
	if hour < 1 || hour > 12 {
		return false
	}
	switch minute {
	case 0, 15, 30, 45:
	default:
		return false
	}
	return m == AM || m == PM
}
