package drift

// pipe runs a single-input stage.
// Each box received on l is passed to step,
// until l closes, step reports false, or the box was completed.
// The output is closed on return.
func pipe[T, U any](out *Events[U], l listener[T], step func(Box[T]) bool) {
	defer out.terminate()
	defer l.close()

	for b := range l.ch {
		if !step(b) {
			out.log.Debug("Stage stopping because output no longer accepts values")
			return
		}
		if b.done {
			out.log.Debug("Stage stopping due to completed input")
			return
		}
	}

	out.log.Debug("Stage stopping due to closed input")
}

// pipeFrom starts a single-input stage from s into a derived stream.
// newStep is called once, with the output, to build the step function.
func pipeFrom[T, U any](
	s *Events[T],
	stage string,
	init *Box[U],
	newStep func(out *Events[U]) func(Box[T]) bool,
) *Events[U] {
	out := derive(s.log, stage, init, s)

	l := s.listen()
	out.onDispose = l.close

	go pipe(out, l, newStep(out))

	return out
}
