package tokenizer

import (
	"errors"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) { return 0, errors.New("encoder unavailable") }

func TestCountBytesText(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte("hello"))
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if !result.Counted {
		t.Fatalf("expected counted result")
	}
	if result.Tokens != len([]rune("hello")) {
		t.Fatalf("expected %d tokens, got %d", len([]rune("hello")), result.Tokens)
	}
}

func TestCountBytesEmpty(t *testing.T) {
	result, err := CountBytes(testCounter{}, nil)
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if !result.Counted || result.Tokens != 0 {
		t.Fatalf("expected zero counted tokens, got %+v", result)
	}
}

func TestCountBytesBinary(t *testing.T) {
	data := []byte{0xff, 0xfe, 0x00}
	result, err := CountBytes(testCounter{}, data)
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if result.Counted {
		t.Fatalf("expected binary data to be skipped")
	}
}

func TestCountBytesInvalidUTF8(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte{'a', 0xff, 'b'})
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if result.Counted {
		t.Fatalf("expected invalid UTF-8 to be skipped")
	}
}

func TestCountBytesPropagatesCounterError(t *testing.T) {
	if _, err := CountBytes(failingCounter{}, []byte("text")); err == nil {
		t.Fatalf("expected counter error")
	}
	if _, err := CountBytes(nil, []byte("text")); err == nil {
		t.Fatalf("expected nil counter error")
	}
}

func TestIsOpenAIModel(t *testing.T) {
	testCases := map[string]bool{
		"gpt-4o":                 true,
		"GPT-3.5-turbo":          true,
		"text-embedding-3-small": true,
		"claude-3-opus":          false,
		"llama-3":                false,
		"":                       false,
	}
	for model, expected := range testCases {
		if actual := IsOpenAIModel(model); actual != expected {
			t.Fatalf("IsOpenAIModel(%q) = %v, want %v", model, actual, expected)
		}
	}
}

func TestTiktokenCounterWithoutEncoding(t *testing.T) {
	counter := tiktokenCounter{name: "cl100k_base"}
	if counter.Name() != "cl100k_base" {
		t.Fatalf("unexpected name %q", counter.Name())
	}
	if _, err := counter.CountString("text"); !errors.Is(err, errMissingEncoding) {
		t.Fatalf("expected missing encoding error, got %v", err)
	}
}
