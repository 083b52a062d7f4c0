// Package step runs an ordered sequence of step functions one at a time.
// Every step receives a shared Control through which it decides how the run
// continues:
//
// - nothing: the following step runs right away with no arguments
// - Next: the following step runs when the returned handle is invoked
// - Skip: the last step runs next, receiving the skip arguments
// - Done: the run ends, optionally calling a final function
// - Parallel/Group: the following step runs once every registered handle
// resolved, receiving the first error and the collected values
//
// Step bodies never overlap. A handle invoked while its own step is still
// executing resumes the run only after that step returned, and handles may
// be invoked from any goroutine.
package step
