// Package apierror provides standardized error response structures for the API
// and the error kinds the settlement services return. Handlers translate a Kind
// into an HTTP status; services never clamp a request, they return one of these.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Kind classifies a domain error. Messages vary; kinds do not.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindInsufficientBalance    Kind = "insufficient_balance"
	KindExceedsPendingDebt     Kind = "exceeds_pending_debt"
	KindExceedsPendingInterest Kind = "exceeds_pending_interest"
	KindNotFound               Kind = "not_found"
	KindStateConflict          Kind = "state_conflict"
)

// Codes refine a kind.
const (
	CodeInventarioInsuficiente = "inventario_insuficiente"
	CodeExcedeCompromiso       = "excede_compromiso"
	CodeExcedeDeposito         = "excede_deposito"
	CodeExcedeSalida           = "excede_salida"
	CodeContratoAnulado        = "contrato_anulado"
	CodeRegistroAnulado        = "registro_anulado"
	CodeYaLiquidado            = "ya_liquidado"
	CodeMovimientoSuperado     = "movimiento_superado"
)

// Error is a classified domain error.
type Error struct {
	Kind   Kind
	Code   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and, when the target carries one, on Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrInsufficientBalance    = &Error{Kind: KindInsufficientBalance}
	ErrInsufficientInventory  = &Error{Kind: KindInsufficientBalance, Code: CodeInventarioInsuficiente}
	ErrExceedsCommitment      = &Error{Kind: KindInsufficientBalance, Code: CodeExcedeCompromiso}
	ErrExceedsDeposit         = &Error{Kind: KindInsufficientBalance, Code: CodeExcedeDeposito}
	ErrExceedsSalida          = &Error{Kind: KindInsufficientBalance, Code: CodeExcedeSalida}
	ErrExceedsPendingDebt     = &Error{Kind: KindExceedsPendingDebt}
	ErrExceedsPendingInterest = &Error{Kind: KindExceedsPendingInterest}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrStateConflict          = &Error{Kind: KindStateConflict}
	ErrContractVoided         = &Error{Kind: KindStateConflict, Code: CodeContratoAnulado}
	ErrAlreadySettled         = &Error{Kind: KindStateConflict, Code: CodeMovimientoSuperado}
	ErrAlreadyVoided          = &Error{Kind: KindStateConflict, Code: CodeRegistroAnulado}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func Conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindStateConflict, Code: code, Detail: fmt.Sprintf(format, args...)}
}

func Insufficient(code string, err error, format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientBalance, Code: code, Detail: fmt.Sprintf(format, args...), Err: err}
}

func PendingDebt(format string, args ...any) *Error {
	return &Error{Kind: KindExceedsPendingDebt, Detail: fmt.Sprintf(format, args...)}
}

func PendingInterest(format string, args ...any) *Error {
	return &Error{Kind: KindExceedsPendingInterest, Detail: fmt.Sprintf(format, args...)}
}

// Status maps an error to the HTTP status the handlers answer with.
// Unclassified errors are 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindInsufficientBalance, KindExceedsPendingDebt, KindExceedsPendingInterest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// From builds the response envelope for a classified error.
func From(err error) *APIError {
	var e *Error
	if errors.As(err, &e) {
		code := e.Code
		if code == "" {
			code = string(e.Kind)
		}
		return &APIError{Detail: e.Detail, Code: code}
	}
	return New("Error interno del servidor")
}
