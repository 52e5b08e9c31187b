// Package fmu implements the core of a co-simulation component: the
// lifecycle state machine, the stepping engine and the state snapshot codec.
//
// A host creates an [Instance] for a [Model], drives it through
//
//	Create → ConfigureExperiment → EnterInitializationMode → (SetReal...)
//	→ ExitInitializationMode → EnterContinuousTimeMode | EnterEventMode
//	→ Step... → Terminate → Destroy
//
// and may capture or restore a [Snapshot] of its signals at any point in
// between. Calls made out of order fail with [ErrInvalidCallSequence]
// instead of touching state.
//
// The model's equations are supplied by the caller. The core only decides
// when they run.
//
// # Status
//
// Every operation returns a Go error. [StatusOf] classifies it the way the
// versioned bindings report it: nil is [OK], recoverable must-stop
// conditions ([ErrSimulationTerminated], [ErrStatusUnavailable]) are
// [Discard], everything else is [Error].
//
// # Thread Safety
//
// An Instance is not safe for concurrent use. Independent instances may be
// driven from different goroutines.
package fmu
