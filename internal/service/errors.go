package service

import "fmt"

const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodePrecondition       = "PRECONDITION"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

func NewNotFound(ref string) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("задача %s не найдена", ref),
		ToDetail("ref", ref))
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeInvalidInput,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason))
}

func NewPrecondition(reason string) *BusinessError {
	return NewBusinessError(CodePrecondition, reason)
}

func NewStorageUnavailable(operation string, err error) *BusinessError {
	busErr := NewBusinessError(CodeStorageUnavailable,
		"хранилище недоступно",
		ToDetail("operation", operation))
	busErr.Err = err
	return busErr
}
