package krajc

// ResourceExists is a predicate for FunctionSystem.RunIf that only runs the
// system once a resource of type T was inserted.
func ResourceExists[T any](rt *Runtime) bool {
	_, ok := ResourceOf[T](rt)
	return ok
}

// EveryNthFrame returns a predicate that is true every n frames.
func EveryNthFrame(n uint64) func(rt *Runtime) bool {
	return func(rt *Runtime) bool {
		frameTime, ok := ResourceOf[FrameTime](rt)
		return ok && n > 0 && frameTime.Frame%n == 0
	}
}
