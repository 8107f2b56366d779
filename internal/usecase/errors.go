package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗（署名不一致を含む）
	ErrAuthentication = errors.New("authentication failed")
	//403 権限
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409 重複
	ErrConflict = errors.New("conflict")
	//409 在庫など整合性が崩れる
	ErrConsistency = errors.New("consistency violation")
	//502/503 DBや決済ゲートウェイの失敗（リトライ可）
	ErrDependency = errors.New("dependency failure")
	//500
	ErrInternal = errors.New("internal error")
)

// HTTPError はhandlerがそのままレスポンスにできるエラー。
// Kind は上の番兵、Err は元のエラー（ログ用、レスポンスには出さない）。
type HTTPError struct {
	Status  int
	Message string
	Kind    error
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// errors.Is(err, ErrValidation) などで判定できるようにする
func (e *HTTPError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Kind:    kindForStatus(status),
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return ErrDependency
	default:
		return ErrInternal
	}
}

func validationError(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

func notFoundError(message string) error {
	return NewHTTPError(http.StatusNotFound, message)
}

func authenticationError(message string) error {
	return NewHTTPError(http.StatusUnauthorized, message)
}

func conflictError(message string) error {
	return NewHTTPError(http.StatusConflict, message)
}

func dependencyError(message string, cause error) error {
	return &HTTPError{Status: http.StatusBadGateway, Message: message, Kind: ErrDependency, Err: cause}
}

// ロック競合など、少し待てば通るもの
func unavailableError(message string, cause error) error {
	return &HTTPError{Status: http.StatusServiceUnavailable, Message: message, Kind: ErrDependency, Err: cause}
}

func consistencyError(message string, cause error) error {
	return &HTTPError{Status: http.StatusConflict, Message: message, Kind: ErrConsistency, Err: cause}
}

func internalError(cause error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "internal error", Kind: ErrInternal, Err: cause}
}
