// Package options implements the generic functional-option pattern shared by
// backends, factories and the manager facade.
package options

// Option configures a target of type T. The apply method is unexported so that
// only this package's constructors can produce options.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function to the Option interface.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New wraps a fallible configuration function.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError wraps a configuration function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Join composes several options into one that applies them in order and stops
// at the first error.
func Join[T any](opts ...Option[T]) Option[T] {
	return New(func(target T) error {
		return Apply(target, opts...)
	})
}

// Apply applies opts to target in order. Nil options are skipped; the first
// error aborts the remaining options.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
