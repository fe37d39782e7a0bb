/*
Package dsl provides a fluent Go builder for dialog flows.

It is an alternative to authoring flow documents on disk, handy for tests and for
flows generated at runtime.

Example usage:

	b := dsl.New()

	b.Flow("main").
		Node("entry").
		OnReceive("greet").
		Branch("wantsBooking", "booking").
		Go("fallback")

	b.Flow("booking").
		Node("ask").
		Branch("hasCity", "confirm")

	b.Flow("booking").
		Node("confirm").
		Return()

	// The result is a ports.FlowLoader.
	loader, err := b.Build()
*/
package dsl
