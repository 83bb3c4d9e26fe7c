package subscription

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredProperty — обязательное свойство пусто после слияния с дефолтами адаптера.
	ErrMissingRequiredProperty = errors.New("missing required consumer property")
	// ErrInvalidTopicPattern — topicPattern не компилируется как регулярное выражение.
	ErrInvalidTopicPattern = errors.New("invalid topic pattern")
	// ErrInvalidPoolSize — poolSize задан, но меньше единицы.
	ErrInvalidPoolSize = errors.New("pool size must be positive")
)

// MissingPropertyError — какое именно свойство отсутствует.
type MissingPropertyError struct {
	Name string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("%v: '%s'", ErrMissingRequiredProperty, e.Name)
}

func (e *MissingPropertyError) Unwrap() error { return ErrMissingRequiredProperty }
