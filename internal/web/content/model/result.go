package model

// Result is the normalized outcome of an access-layer call.
//
// Not-found single reads are `Success=false` with an empty Error,
// subscription transport failures are `Success=false` with Error set.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data in a successful result.
func OK[T any](data T) *Result[T] {
	return &Result[T]{Success: true, Data: data}
}

// Fail builds a failed result carrying err.
func Fail[T any](err error) *Result[T] {
	r := &Result[T]{}
	if err != nil {
		r.Error = err.Error()
	}

	return r
}
