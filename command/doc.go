// Package command implements reactive commands: units of work bound to a
// parameter, guarded by an enablement condition, whose results, errors and
// execution state are observable over time.
//
// A command is created once, typically by a view-model or controller, and
// invoked many times. Each call to Execute returns a lazily started handle;
// the action runs when the handle gets its first subscriber. Invocations may
// overlap. The command tracks how many are in flight and derives two
// long-lived signals from that count:
//
//   - IsExecuting is true while at least one invocation is in flight.
//   - CanExecute is the latest enablement value AND NOT IsExecuting.
//
// Both replay their current value to new observers and only notify on
// actual changes, so UI elements can bind to them directly.
//
// Every produced value is published on Results and every failure on
// Errors. A failure is also re-raised to the subscribers of the handle that
// caused it. If the enablement source fails, the failure is reported on
// Errors and the command stays disabled for the rest of its life.
//
// Example:
//
//	save := command.FromFunc(func(ctx context.Context, doc Document) (Revision, error) {
//	    return store.Save(ctx, doc)
//	}, command.WithCanExecute(form.IsValid()), command.WithName("save"))
//
//	save.CanExecute().Subscribe(rx.OnValue(button.SetEnabled))
//	rev, err := save.ExecuteAsync(ctx, doc)
package command
