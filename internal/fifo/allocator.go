// Package fifo partitions a requested quantity across open balance records,
// oldest first. It has no storage dependency: callers load the records inside
// their own transaction, run Allocate, and only then write.
package fifo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientBalance is returned when the records cannot cover the request.
	ErrInsufficientBalance = errors.New("saldo insuficiente")
	// ErrInvalidQuantity is returned for zero or negative requests.
	ErrInvalidQuantity = errors.New("la cantidad debe ser mayor a cero")
)

// Record is one open balance: a lot, a deposit, a contract, a debt.
// Secuencia is the creation order captured when the record was inserted.
type Record struct {
	ID         uuid.UUID
	Secuencia  int64
	Disponible decimal.Decimal
}

// Allocation is the share of the request taken from a single record.
type Allocation struct {
	ID       uuid.UUID
	Cantidad decimal.Decimal
	// Restante is what the record keeps after this allocation.
	Restante decimal.Decimal
}

// Result holds the allocations in the order they were taken.
type Result struct {
	Solicitado   decimal.Decimal
	Asignaciones []Allocation
}

// Total returns the sum of the allocated quantities.
func (r Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Asignaciones {
		total = total.Add(a.Cantidad)
	}
	return total
}

// ShortfallError reports how much of the request could not be covered.
type ShortfallError struct {
	Solicitado decimal.Decimal
	Disponible decimal.Decimal
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("saldo insuficiente: solicitado %s, disponible %s",
		e.Solicitado.String(), e.Disponible.String())
}

func (e *ShortfallError) Unwrap() error { return ErrInsufficientBalance }

// Faltante is the uncovered part of the request.
func (e *ShortfallError) Faltante() decimal.Decimal {
	return e.Solicitado.Sub(e.Disponible)
}

// Allocate walks records in (Secuencia, ID) order taking min(remainder, available)
// from each. It is all-or-nothing: when the records are exhausted before the
// request is covered it returns a *ShortfallError and no allocations.
func Allocate(solicitado decimal.Decimal, records []Record) (Result, error) {
	if !solicitado.IsPositive() {
		return Result{}, ErrInvalidQuantity
	}

	ordered := Ordenar(records)
	restante := solicitado
	asignaciones := make([]Allocation, 0, len(ordered))

	for _, rec := range ordered {
		if restante.IsZero() {
			break
		}
		disponible := rec.Disponible
		if !disponible.IsPositive() {
			continue
		}
		take := decimal.Min(restante, disponible)
		asignaciones = append(asignaciones, Allocation{
			ID:       rec.ID,
			Cantidad: take,
			Restante: disponible.Sub(take),
		})
		restante = restante.Sub(take)
	}

	if restante.IsPositive() {
		return Result{}, &ShortfallError{Solicitado: solicitado, Disponible: Total(records)}
	}
	return Result{Solicitado: solicitado, Asignaciones: asignaciones}, nil
}

// Total sums the positive availability of the records.
func Total(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if rec.Disponible.IsPositive() {
			total = total.Add(rec.Disponible)
		}
	}
	return total
}

// Ordenar returns a copy of records sorted by creation order, ties broken by ID.
func Ordenar(records []Record) []Record {
	ordered := make([]Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Secuencia != ordered[j].Secuencia {
			return ordered[i].Secuencia < ordered[j].Secuencia
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})
	return ordered
}
