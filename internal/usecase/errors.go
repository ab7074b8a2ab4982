package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindVariationMismatch ErrorKind = "variation_mismatch"
	KindPersistence       ErrorKind = "persistence"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariationNotFound = errors.New("variation not found")
	ErrVariationMismatch = errors.New("variation does not belong to product")
	//STOCK_POLICY=reject のときだけ
	ErrInsufficientStock = errors.New("insufficient stock")
)

// handlerでそのままレスポンスにする
type HTTPError struct {
	Status  int
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 422。fieldsは items[0].quantity のようなキー
func NewValidationError(message string, fields map[string]string) error {
	return &HTTPError{
		Status:  http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: message,
		Fields:  fields,
	}
}

func NewNotFoundError(message string) error {
	return &HTTPError{
		Status:  http.StatusNotFound,
		Kind:    KindNotFound,
		Message: message,
	}
}

func NewVariationMismatchError(field string, cause error) error {
	return &HTTPError{
		Status:  http.StatusUnprocessableEntity,
		Kind:    KindVariationMismatch,
		Message: "variation does not belong to product",
		Fields:  map[string]string{field: "does not belong to product"},
		Err:     cause,
	}
}

// 500。中身はログにだけ出す
func NewPersistenceError(cause error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Kind:    KindPersistence,
		Message: "db error",
		Err:     cause,
	}
}

func NewUnauthorizedError() error {
	return &HTTPError{
		Status:  http.StatusUnauthorized,
		Kind:    KindUnauthorized,
		Message: "unauthorized",
	}
}

func NewForbiddenError() error {
	return &HTTPError{
		Status:  http.StatusForbidden,
		Kind:    KindForbidden,
		Message: "forbidden",
	}
}

func IsKind(err error, kind ErrorKind) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Kind == kind
}

// usecase内で想定外のエラーは全部500に寄せる
func asPersistence(err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return NewPersistenceError(err)
}
