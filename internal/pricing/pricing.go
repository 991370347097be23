// Package pricing is the single authority for order charge computation.
// Checkout and any client-facing price preview must go through Compute so
// the two can never drift apart.
package pricing

import (
	"errors"
	"math"
	"time"
)

type OrderType string

const (
	TypePurchase OrderType = "purchase"
	TypeRental   OrderType = "rental"
)

// One redeemed loyalty point discounts one currency unit.
// A rental is charged 10% of the subtotal per started day.
const rentalRatePerDay = 0.10

var (
	ErrUnknownOrderType = errors.New("unknown order type")
	ErrRentalWindow     = errors.New("rental end must be after rental start")
	ErrRentalMultiItem  = errors.New("rental orders must contain exactly one product")
)

type Line struct {
	UnitPrice float64
	Quantity  uint
}

type Window struct {
	Start time.Time
	End   time.Time
}

type Quote struct {
	Total         float64
	AppliedPoints int
}

// Compute prices a set of cart lines. requestedPoints is clamped to the
// buyer's balance; the charge never goes below zero. No side effects.
func Compute(ot OrderType, lines []Line, window *Window, requestedPoints, balance int) (Quote, error) {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}

	applied := requestedPoints
	if applied > balance {
		applied = balance
	}
	if applied < 0 {
		applied = 0
	}

	switch ot {
	case TypePurchase:
		return Quote{Total: floor0(subtotal - float64(applied)), AppliedPoints: applied}, nil

	case TypeRental:
		if len(lines) != 1 {
			return Quote{}, ErrRentalMultiItem
		}
		if window == nil || !window.End.After(window.Start) {
			return Quote{}, ErrRentalWindow
		}
		days := rentalDays(window.Start, window.End)
		if days <= 0 {
			// unreachable once the window check passed, kept as a floor
			return Quote{AppliedPoints: applied}, nil
		}
		total := subtotal * float64(days) * rentalRatePerDay
		return Quote{Total: floor0(total - float64(applied)), AppliedPoints: applied}, nil

	default:
		return Quote{}, ErrUnknownOrderType
	}
}

func rentalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

func floor0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
