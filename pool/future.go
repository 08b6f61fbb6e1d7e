package pool

// Future is the pending result of a submitted function.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Done is closed once the function has returned.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the function has returned and reports its error.
func (f *Future) Wait() error {
	<-f.done

	return f.err
}

// Wait blocks until every future has completed and returns the first
// non-nil error in slice order.
func Wait(futures []*Future) error {
	var first error

	for _, f := range futures {
		if err := f.Wait(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
