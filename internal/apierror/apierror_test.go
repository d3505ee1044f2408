package apierror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"cafehenola/internal/apierror"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	err := apierror.Insufficient(apierror.CodeExcedeCompromiso, nil, "excede")
	wrapped := fmt.Errorf("registrar entrega: %w", err)

	assert.ErrorIs(t, wrapped, apierror.ErrInsufficientBalance)
	assert.ErrorIs(t, wrapped, apierror.ErrExceedsCommitment)
	assert.False(t, errors.Is(wrapped, apierror.ErrInsufficientInventory))
	assert.False(t, errors.Is(wrapped, apierror.ErrNotFound))
}

func TestStatusMapping(t *testing.T) {
	cases := map[error]int{
		apierror.Validation("x"): http.StatusBadRequest,
		apierror.Insufficient(apierror.CodeInventarioInsuficiente, nil, "x"): http.StatusBadRequest,
		apierror.PendingInterest("x"):                                        http.StatusBadRequest,
		apierror.NotFound("x"):                                               http.StatusNotFound,
		apierror.Conflict(apierror.CodeContratoAnulado, "x"):                 http.StatusConflict,
		errors.New("boom"):                                                   http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, apierror.Status(err), err.Error())
	}
}

func TestFromHidesUnclassified(t *testing.T) {
	resp := apierror.From(errors.New("pq: connection refused"))
	assert.Equal(t, "Error interno del servidor", resp.Detail)

	resp = apierror.From(apierror.PendingDebt("el abono excede la deuda"))
	assert.Equal(t, string(apierror.KindExceedsPendingDebt), resp.Code)
}
