/*
Package cadence runs timed motor-imagery sessions and marks every phase
transition on an external recording apparatus.

A session walks an ordered list of trials. Each trial shows a fixation cross
for a randomized interval, a task instruction and an execute cue; trigger
markers go out over UDP at the boundaries so the recording can be aligned with
what the subject saw.

# Usage

Load a catalog, build an emitter on a transport and run a Station:

	cat, err := catalog.Load("tasks.csv", "order.csv")
	if err != nil {
		log.Fatal(err)
	}

	transport, err := trigger.DialUDP("172.16.191.129", 50000)
	if err != nil {
		log.Fatal(err)
	}
	emitter := trigger.NewEmitter(transport)
	defer emitter.Close()

	station := cadence.New(emitter)
	go station.Run(ctx)

	result, err := station.RunSession(ctx, cat.Trials)

The session state machine itself lives in pkg/session and is driven by the
single-threaded loop in pkg/loop. Station owns both and is safe for
concurrent use: every call is serialized onto the loop goroutine.
*/
package cadence
