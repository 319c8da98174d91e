package model

import (
	"errors"
	"fmt"
	"time"
)

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaxHorizonDays bounds how far ahead a preview may look.
const MaxHorizonDays = 3650

// PreviewSettings are the stored preferences applied to every preview.
type PreviewSettings struct {
	HorizonDays int    `json:"horizon_days"`
	DateLayout  string `json:"date_layout"`
}

func (p PreviewSettings) Validate() error {
	if p.HorizonDays < 1 || p.HorizonDays > MaxHorizonDays {
		return fmt.Errorf("horizon_days must be between 1 and %d", MaxHorizonDays)
	}
	if p.DateLayout == "" {
		return errors.New("date_layout is required")
	}
	// A layout without any reference-time element formats to itself.
	if time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Format(p.DateLayout) == p.DateLayout {
		return fmt.Errorf("date_layout %q has no date elements", p.DateLayout)
	}
	return nil
}
