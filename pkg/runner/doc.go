/*
Package runner drives turns for stored sessions.

It is the bridge between the stateless engine and the session layer: every turn
loads (or starts) the session under its lock, runs the engine and saves the result,
forcing a durable write when the turn changed slots.

# Usage

	r := runner.New(engine,
		runner.WithManager(session.NewManager(store)),
	)

	out, err := r.HandleTurn(ctx, "user-1", understanding)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Decision.Describe())

Stream runs the same cycle over JSON lines, one classifier payload per line.
*/
package runner
