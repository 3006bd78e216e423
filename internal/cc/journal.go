package cc

// Journal is the one generic backtrackable-state abstraction spec.md's
// design notes ask for ("provide one generic journal abstraction: a
// stack of closures... push_level records a fence; pop_levels pops
// fences and executes undo records in LIFO order"). internal/satcore's
// trail/cancelUntil embodies the same push-fence/replay-undo discipline
// specialized to the SAT trail; Journal generalizes it to the union-find
// and plugin state that live above satcore.
type Journal struct {
	undo   []func()
	fences []int
}

// Record registers an undo closure for the mutation just performed. It
// must be called before PushLevel is ever invoked a second time with
// this mutation still pending, i.e. immediately at the mutation site.
func (j *Journal) Record(undo func()) {
	j.undo = append(j.undo, undo)
}

// PushLevel opens a new backtracking frame.
func (j *Journal) PushLevel() {
	j.fences = append(j.fences, len(j.undo))
}

// PopLevels reverts the last n frames, running their undo closures in
// LIFO order.
func (j *Journal) PopLevels(n int) {
	for ; n > 0; n-- {
		fence := j.fences[len(j.fences)-1]
		j.fences = j.fences[:len(j.fences)-1]
		for i := len(j.undo) - 1; i >= fence; i-- {
			j.undo[i]()
		}
		j.undo = j.undo[:fence]
	}
}

// Level reports the current frame depth.
func (j *Journal) Level() int {
	return len(j.fences)
}
