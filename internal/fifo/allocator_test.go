package fifo_test

import (
	"errors"
	"testing"

	"cafehenola/internal/fifo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qq(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAllocateFIFOOrder(t *testing.T) {
	l1 := fifo.Record{ID: uuid.New(), Secuencia: 1, Disponible: qq(5)}
	l2 := fifo.Record{ID: uuid.New(), Secuencia: 2, Disponible: qq(10)}

	// Input order must not matter; Secuencia decides.
	res, err := fifo.Allocate(qq(7), []fifo.Record{l2, l1})
	require.NoError(t, err)
	require.Len(t, res.Asignaciones, 2)

	assert.Equal(t, l1.ID, res.Asignaciones[0].ID)
	assert.True(t, res.Asignaciones[0].Cantidad.Equal(qq(5)))
	assert.True(t, res.Asignaciones[0].Restante.IsZero())

	assert.Equal(t, l2.ID, res.Asignaciones[1].ID)
	assert.True(t, res.Asignaciones[1].Cantidad.Equal(qq(2)))
	assert.True(t, res.Asignaciones[1].Restante.Equal(qq(8)))
}

func TestAllocateConservation(t *testing.T) {
	records := []fifo.Record{
		{ID: uuid.New(), Secuencia: 3, Disponible: decimal.RequireFromString("2.5")},
		{ID: uuid.New(), Secuencia: 1, Disponible: decimal.RequireFromString("1.25")},
		{ID: uuid.New(), Secuencia: 2, Disponible: decimal.RequireFromString("4")},
	}
	pre := map[uuid.UUID]decimal.Decimal{}
	for _, r := range records {
		pre[r.ID] = r.Disponible
	}

	solicitado := decimal.RequireFromString("6.75")
	res, err := fifo.Allocate(solicitado, records)
	require.NoError(t, err)

	assert.True(t, res.Total().Equal(solicitado))
	for _, a := range res.Asignaciones {
		assert.True(t, a.Cantidad.LessThanOrEqual(pre[a.ID]))
		assert.True(t, a.Cantidad.IsPositive())
	}
}

func TestAllocateInsufficientIsAllOrNothing(t *testing.T) {
	records := []fifo.Record{
		{ID: uuid.New(), Secuencia: 1, Disponible: qq(3)},
		{ID: uuid.New(), Secuencia: 2, Disponible: qq(4)},
	}

	res, err := fifo.Allocate(qq(8), records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fifo.ErrInsufficientBalance))
	assert.Empty(t, res.Asignaciones)

	var short *fifo.ShortfallError
	require.True(t, errors.As(err, &short))
	assert.True(t, short.Faltante().Equal(qq(1)))

	// Input records are untouched.
	assert.True(t, records[0].Disponible.Equal(qq(3)))
	assert.True(t, records[1].Disponible.Equal(qq(4)))
}

func TestAllocateSkipsEmptyRecords(t *testing.T) {
	vacio := fifo.Record{ID: uuid.New(), Secuencia: 1, Disponible: decimal.Zero}
	negativo := fifo.Record{ID: uuid.New(), Secuencia: 2, Disponible: qq(-2)}
	lleno := fifo.Record{ID: uuid.New(), Secuencia: 3, Disponible: qq(6)}

	res, err := fifo.Allocate(qq(6), []fifo.Record{vacio, negativo, lleno})
	require.NoError(t, err)
	require.Len(t, res.Asignaciones, 1)
	assert.Equal(t, lleno.ID, res.Asignaciones[0].ID)
}

func TestAllocateStopsWhenCovered(t *testing.T) {
	records := []fifo.Record{
		{ID: uuid.New(), Secuencia: 1, Disponible: qq(10)},
		{ID: uuid.New(), Secuencia: 2, Disponible: qq(10)},
	}
	res, err := fifo.Allocate(qq(10), records)
	require.NoError(t, err)
	assert.Len(t, res.Asignaciones, 1)
}

func TestAllocateTieBreakByID(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	res, err := fifo.Allocate(qq(1), []fifo.Record{
		{ID: b, Secuencia: 7, Disponible: qq(1)},
		{ID: a, Secuencia: 7, Disponible: qq(1)},
	})
	require.NoError(t, err)
	require.Len(t, res.Asignaciones, 1)
	assert.Equal(t, a, res.Asignaciones[0].ID)
}

func TestAllocateRejectsNonPositive(t *testing.T) {
	_, err := fifo.Allocate(decimal.Zero, []fifo.Record{{ID: uuid.New(), Disponible: qq(1)}})
	assert.ErrorIs(t, err, fifo.ErrInvalidQuantity)

	_, err = fifo.Allocate(qq(-1), nil)
	assert.ErrorIs(t, err, fifo.ErrInvalidQuantity)
}
