package querycache

// Typed is a Result whose data has been asserted to T.
type Typed[T any] struct {
	Data       T
	HasData    bool
	Err        error
	IsLoading  bool
	IsFetching bool
}

func As[T any](r Result) Typed[T] {
	out := Typed[T]{
		Err:        r.Err,
		IsLoading:  r.IsLoading,
		IsFetching: r.IsFetching,
	}
	if data, ok := r.Data.(T); ok {
		out.Data = data
		out.HasData = true
	}
	return out
}
