/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing Parley scripts.

It allows developers to define branching conversations using a type-safe, fluent builder pattern
instead of relying on external YAML or JSON files. This is particularly useful for dynamic script
generation, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/parley/pkg/dsl"
	)

	func main() {
		b := dsl.New()
		b.Cast("Ava", "ava.png")

		b.Line(1).
			Talker("Ava").
			Say("Welcome to Parley!").
			Start().
			Next(2)

		b.Line(2).
			Say("Which way?").
			Choice("Left", 3).
			Choice("Right", 4)

		b.Line(3).Say("You went left.").End()
		b.Line(4).Say("You went right.").End()

		// Compile directly...
		conv, err := b.Build()
		_ = conv
		_ = err

		// ...or serve it through an engine.
		loader, _ := b.Loader("intro")
		_ = loader
	}
*/
package dsl
