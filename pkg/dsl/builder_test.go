package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/parley/pkg/conversation"
	"github.com/aretw0/parley/pkg/script"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New()
	b.Cast("Ava", "ava.png")

	b.Line(1).
		Talker("Ava").
		Say("Hello, DSL!").
		Start().
		Next(2)

	b.Line(2).
		Say("Goodbye!").
		End()

	conv, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if conv.NodeCount() != 2 {
		t.Errorf("Expected 2 nodes, got %d", conv.NodeCount())
	}
	if conv.CurrentText() != "Hello, DSL!" {
		t.Errorf("Expected cursor on the start line, got %q", conv.CurrentText())
	}

	talkers := conv.CurrentTalkers()
	if len(talkers) != 1 || talkers[0].Name != "Ava" || talkers[0].Asset != "ava.png" {
		t.Errorf("Expected resolved talker Ava, got %v", talkers)
	}

	if err := conv.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if !conv.AtEnd() {
		t.Error("Expected the second line to be terminal")
	}
}

func TestBuilder_ChoiceFlow(t *testing.T) {
	b := New()

	b.Line(1).
		Say("Which door?").
		Start().
		Choice("Left", 2).
		Choice("Right", 3)

	b.Line(2).Say("Left room").End()
	b.Line(3).Say("Right room").End()

	conv, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if conv.CurrentKind() != conversation.KindChoice {
		t.Errorf("Expected a choice line, got %s", conv.CurrentKind())
	}

	out := conv.Out(1)
	if len(out) != 2 || out[0] != 2 || out[1] != 3 {
		t.Errorf("Out(1) = %v, want [2 3]", out)
	}
}

func TestBuilder_StageDirections(t *testing.T) {
	b := New()
	b.Cast("Bob", "")

	b.Line(1).Enter("Bob").Start().Next(2)
	b.Line(2).Exit("Bob").End()

	conv, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if conv.CurrentKind() != conversation.KindEnter {
		t.Errorf("Expected enter line, got %s", conv.CurrentKind())
	}
	if err := conv.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if conv.CurrentKind() != conversation.KindExit {
		t.Errorf("Expected exit line, got %s", conv.CurrentKind())
	}
}

func TestBuilder_LineIsMemoized(t *testing.T) {
	b := New()

	first := b.Line(1)
	second := b.Line(1)
	if first != second {
		t.Error("Line(1) should return the same builder on repeat calls")
	}

	first.Say("once").Start().End()
	if got := len(b.Script().Lines); got != 1 {
		t.Errorf("Expected 1 line, got %d", got)
	}
}

func TestBuilder_PreservesLineOrder(t *testing.T) {
	b := New()

	b.Line(30).Say("third").End()
	b.Line(10).Say("first").Start().Next(30)
	b.Line(20).Say("second").Next(30)

	s := b.Script()
	if s.Lines[0].ID != 30 || s.Lines[1].ID != 10 || s.Lines[2].ID != 20 {
		t.Errorf("Lines should keep insertion order, got %v", []int{s.Lines[0].ID, s.Lines[1].ID, s.Lines[2].ID})
	}
}

func TestBuilder_CompileErrorsPassThrough(t *testing.T) {
	b := New()

	b.Line(1).Say("dangling").Start().Next(99)

	_, err := b.Build()
	var notFound *conversation.NextLineNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NextLineNotFoundError, got %v", err)
	}
	if notFound.Line != 1 || notFound.Target != 99 {
		t.Errorf("Unexpected error payload: %+v", notFound)
	}
}

func TestBuilder_Meta(t *testing.T) {
	b := New()
	b.Meta("Intro", "The opening scene")
	b.Line(1).Say("hi").Start().End()

	s := b.Script()
	if s.Meta == nil || s.Meta.Title != "Intro" || s.Meta.Description != "The opening scene" {
		t.Errorf("Unexpected meta: %+v", s.Meta)
	}
}

func TestBuilder_Loader(t *testing.T) {
	b := New()
	b.Line(1).Say("served").Start().End()

	loader, err := b.Loader("intro")
	if err != nil {
		t.Fatalf("Loader() failed: %v", err)
	}

	raw, err := loader.GetScript("intro")
	if err != nil {
		t.Fatalf("GetScript failed: %v", err)
	}

	parsed, err := script.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed.Lines) != 1 || parsed.Lines[0].Text != "served" {
		t.Errorf("Round trip mismatch: %+v", parsed)
	}
}
