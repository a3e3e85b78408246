// Package scheduler drives the wall: an endless, cyclic walk over a fixed
// list of presentation steps.
//
// Each pass of the loop selects the next step (wrapping at the end), limits
// the providers the step can see to the ones it declared, asks the step
// whether it wants to be skipped, runs its body inline or on the rendering
// [Executor], keeps it on screen for at least its minimum duration, and then
// waits until the step calls its [Proceed] function or the proceed timeout
// expires.
//
// A misbehaving step never stops the loop: errors and panics from the body
// are logged and treated as an immediate proceed, a panicking skip predicate
// means "do not skip", and a step that never proceeds is abandoned after the
// timeout. A late Proceed from an abandoned step is ignored.
//
// # Usage
//
//	s, err := scheduler.New(steps, providers, scheduler.Options{
//	    ProceedTimeout: 30 * time.Second,
//	    Executor:       ui,
//	    Logger:         logger,
//	})
//	if err != nil {
//	    return err
//	}
//	s.Start(ctx)
//	<-s.Done()
package scheduler
