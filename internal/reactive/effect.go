package reactive

// Effect runs fn now and again whenever a signal it read during its previous
// run changes. The returned function disposes the effect: it never runs
// again and every dependency edge it recorded is removed.
//
// A panic inside fn propagates to whoever triggered the run.
func (rt *Runtime) Effect(fn func()) (dispose func()) {
	sub := &subscriber{active: true}
	sub.notify = func() {
		rt.runTracked(sub, fn)
	}
	rt.runTracked(sub, fn)

	return func() {
		sub.active = false
		sub.clearDeps()
	}
}
