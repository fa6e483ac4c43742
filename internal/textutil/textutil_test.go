package textutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestContainsWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		word   string
		expect bool
	}{
		{name: "whole word", text: "I want to end this", word: "end", expect: true},
		{name: "inside another word", text: "I am a backend engineer", word: "end", expect: false},
		{name: "case insensitive", text: "QUIT now", word: "quit", expect: true},
		{name: "punctuation boundary", text: "stop!", word: "stop", expect: true},
		{name: "second occurrence matches", text: "backend, then end", word: "end", expect: true},
		{name: "prefix of word", text: "exiting the room", word: "exit", expect: false},
		{name: "hyphenated compound", text: "I build front-end and End-to-End apps", word: "end", expect: false},
		{name: "sentence end after hyphenated word", text: "front-end work, so let us end.", word: "end", expect: true},
		{name: "empty word", text: "anything", word: " ", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ContainsWord(tt.text, tt.word); got != tt.expect {
				t.Fatalf("ContainsWord(%q, %q) = %v, want %v", tt.text, tt.word, got, tt.expect)
			}
		})
	}
}

func TestNormalizeAndWordCount(t *testing.T) {
	t.Parallel()

	got := Normalize("  hello \n\t  big   world ")
	if got != "hello big world" {
		t.Fatalf("unexpected normalized text: %q", got)
	}
	if n := WordCount(got); n != 3 {
		t.Fatalf("expected 3 words, got %d", n)
	}
	if !IsBlank(" \n ") {
		t.Fatalf("expected whitespace to be blank")
	}
	if ContainsFold("React developer", "") {
		t.Fatalf("empty substring must not match")
	}
}

func TestWaitForHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if err := WaitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
