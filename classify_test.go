package verdict

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected OutcomeCode
	}{
		{name: "empty", text: "", expected: CodeRefusal},
		{name: "refusal", text: "Sorry, I cannot help with that.", expected: CodeRefusal},
		{name: "refusal uppercase", text: "I REFUSE.", expected: CodeRefusal},
		{name: "apology", text: "I apologize for the confusion", expected: CodeRefusal},
		{name: "contraction", text: "I won't do it", expected: CodeRefusal},
		{name: "warning", text: "Warning: hot surface", expected: CodeWarning},
		{name: "hedge", text: "This might work", expected: CodeWarning},
		{name: "note that", text: "Note that batteries leak", expected: CodeWarning},
		{name: "advice", text: "Here are 3 tips", expected: CodeAdvice},
		{name: "recommend", text: "I recommend recycling", expected: CodeAdvice},
		{name: "here's", text: "Here's one idea", expected: CodeAdvice},
		{name: "normal", text: "Keep going, you are doing great.", expected: CodeNormal},
		{name: "timeout marker", text: TimeoutMarker, expected: CodeNormal},
		{name: "status marker", text: "Error: 500", expected: CodeNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.expected {
				t.Errorf("Classify(%q) = %d, expected %d", tt.text, got, tt.expected)
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	t.Run("refusal beats advice", func(t *testing.T) {
		if got := Classify("Sorry, but here are some tips"); got != CodeRefusal {
			t.Errorf("Expected refusal, got %d", got)
		}
	})

	t.Run("refusal beats warning", func(t *testing.T) {
		if got := Classify("Warning: I cannot continue"); got != CodeRefusal {
			t.Errorf("Expected refusal, got %d", got)
		}
	})

	t.Run("warning beats advice", func(t *testing.T) {
		if got := Classify("Tip: you may want gloves"); got != CodeWarning {
			t.Errorf("Expected warning, got %d", got)
		}
	})

	t.Run("substring match", func(t *testing.T) {
		// "may" inside "mayonnaise" still counts.
		if got := Classify("Add mayonnaise"); got != CodeWarning {
			t.Errorf("Expected warning, got %d", got)
		}
	})
}

func TestClassifyTotal(t *testing.T) {
	inputs := []string{"", " ", "x", "{}", "Error: Timeout", "\x00\xff", "日本語のテキスト"}
	valid := map[OutcomeCode]bool{CodeRefusal: true, CodeNormal: true, CodeAdvice: true, CodeWarning: true}

	for _, input := range inputs {
		first := Classify(input)
		if !valid[first] {
			t.Errorf("Classify(%q) returned code outside the taxonomy: %d", input, first)
		}
		if again := Classify(input); again != first {
			t.Errorf("Classify(%q) not deterministic: %d then %d", input, first, again)
		}
	}
}

func TestLabel(t *testing.T) {
	expected := map[OutcomeCode]string{
		CodeRefusal: "Refusal/Cannot",
		CodeNormal:  "Normal Response",
		CodeAdvice:  "Tips/Advice",
		CodeWarning: "Warning/Caution",
		999:         "Unknown",
	}
	for code, label := range expected {
		if got := Label(code); got != label {
			t.Errorf("Label(%d) = %q, expected %q", code, got, label)
		}
	}
}

func TestHistogram(t *testing.T) {
	records := []BatchRecord{
		{ResultCode: CodeAdvice},
		{ResultCode: CodeRefusal},
		{ResultCode: CodeAdvice},
		{ResultCode: CodeWarning},
	}

	h := NewHistogram(records)
	if h[CodeAdvice] != 2 || h[CodeRefusal] != 1 || h[CodeWarning] != 1 {
		t.Errorf("Unexpected counts: %v", h)
	}
	if h.Total() != len(records) {
		t.Errorf("Expected total %d, got %d", len(records), h.Total())
	}

	codes := h.Codes()
	want := []OutcomeCode{CodeRefusal, CodeAdvice, CodeWarning}
	if len(codes) != len(want) {
		t.Fatalf("Expected %d codes, got %v", len(want), codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("Codes()[%d] = %d, expected %d", i, codes[i], want[i])
		}
	}

	if len(NewHistogram(nil).Codes()) != 0 {
		t.Error("Expected empty histogram for no records")
	}
}
