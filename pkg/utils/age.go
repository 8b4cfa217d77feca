package utils

import "time"

// Age computes whole years elapsed since birthDate, used by the profile
// service for the 18-120 birth_date check and the age shown in profile
// responses (spec.md §4.3).
func Age(birthDate time.Time) int {
	now := time.Now().UTC()
	years := now.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
