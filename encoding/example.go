package encoding

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
)

// Faker is a interface for generating structures
// with fake data. It is used for generating examples.
type Faker interface {
	Fake() any
}

// Example returns an instance of T with fake data.
// The `fake` struct tags control the generated values.
func Example[T any]() (any, error) {
	v := new(T)
	if f, ok := any(*v).(Faker); ok {
		return f.Fake(), nil
	}
	if f, ok := any(v).(Faker); ok {
		return f.Fake(), nil
	}
	if err := gofakeit.Struct(v); err != nil {
		return nil, errors.Wrap(err, "failed to generate fake data")
	}
	return v, nil
}
