package domain

import (
	"errors"
	"time"
)

// ErrJourOutsideSemaine is returned when a day falls after the week's end date.
var ErrJourOutsideSemaine = errors.New("day is outside of the week range")

// Semaine is a production week / Semaine de production
type Semaine struct {
	ID        int64
	Nom       string // e.g. "semaine5"
	DateDebut time.Time
	DateFin   time.Time
	CreatedAt time.Time
}

// DateOnly truncates t to midnight UTC / Tronque t à minuit UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidRange checks debut <= fin <= debut+6 days.
func (s *Semaine) ValidRange() bool {
	debut, fin := DateOnly(s.DateDebut), DateOnly(s.DateFin)
	if fin.Before(debut) {
		return false
	}
	return !fin.After(debut.AddDate(0, 0, 6))
}

// DateOf returns the calendar date of a day of this week / Retourne la date calendaire d'un jour de la semaine
func (s *Semaine) DateOf(j Jour) (time.Time, error) {
	off := j.Offset()
	if off < 0 {
		return time.Time{}, errors.New("unknown day")
	}
	d := DateOnly(s.DateDebut).AddDate(0, 0, off)
	if d.After(DateOnly(s.DateFin)) {
		return time.Time{}, ErrJourOutsideSemaine
	}
	return d, nil
}

// Contains reports whether date lies within the week.
func (s *Semaine) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(s.DateDebut)) && !d.After(DateOnly(s.DateFin))
}
