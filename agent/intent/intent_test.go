package intent

import "testing"

func TestClassifyPrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"day summary wins over visit", "give me the day summary before the next visit", DaySummary},
		{"visit", "let's visit Store B", Visit},
		{"visit by number", "Visit 3", Visit},
		{"plan", "show my plan", ViewPlan},
		{"unknown", "hello there", Unknown},
		{"empty", "   ", Unknown},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.text)
			if got.Intent != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.text, got.Intent, tc.want)
			}
		})
	}
}

func TestClassifyUnvisitedIsPlanFilter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text          string
		onlyUnvisited bool
	}{
		{"show unvisited stores in my plan", true},
		{"plan for stores not visited", true},
		{"show remaining plan", true},
		{"show pending stops in the plan", true},
		{"show my plan", false},
	}

	for _, tc := range cases {
		got := Classify(tc.text)
		if got.Intent != ViewPlan {
			t.Fatalf("Classify(%q) = %s, want view_plan", tc.text, got.Intent)
		}
		if got.OnlyUnvisited != tc.onlyUnvisited {
			t.Fatalf("Classify(%q).OnlyUnvisited = %v, want %v", tc.text, got.OnlyUnvisited, tc.onlyUnvisited)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	t.Parallel()

	if got := Classify("DAY SUMMARY please"); got.Intent != DaySummary {
		t.Fatalf("expected day_summary, got %s", got.Intent)
	}
	if got := Classify("VISIT store 1"); got.Intent != Visit {
		t.Fatalf("expected visit, got %s", got.Intent)
	}
}

func TestIntentString(t *testing.T) {
	t.Parallel()

	pairs := map[Intent]string{
		Unknown:    "unknown",
		ViewPlan:   "view_plan",
		Visit:      "visit",
		DaySummary: "day_summary",
	}
	for intent, want := range pairs {
		if got := intent.String(); got != want {
			t.Fatalf("String() = %q, want %q", got, want)
		}
	}
}
