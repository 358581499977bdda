package formula

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/notegen-backend/internal/modules/notes/fieldpath"
)

func mapLookup(data map[string]any) Lookup {
	return func(path string) (any, bool) {
		segs, err := fieldpath.Parse(path)
		if err != nil {
			return nil, false
		}
		cur := any(data)
		for _, seg := range segs {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			cur, ok = m[seg.Name]
			if !ok {
				return nil, false
			}
			if seg.IsArray && seg.Index != fieldpath.NoIndex {
				arr, ok := cur.([]any)
				if !ok || seg.Index >= len(arr) {
					return nil, false
				}
				cur = arr[seg.Index]
			}
		}
		return cur, true
	}
}

func evalOn(t *testing.T, src string, data map[string]any) any {
	t.Helper()
	got, err := NewEvaluator().Evaluate(src, mapLookup(data))
	if err != nil {
		t.Fatalf("evaluate %q: %v", src, err)
	}
	return got
}

func TestEvaluateScoreDelta(t *testing.T) {
	data := map[string]any{"assessments": map[string]any{"phq9": map[string]any{"score": float64(21)}}}
	got := evalOn(t, "assessments.phq9.score - 6", data)
	if got != float64(15) {
		t.Fatalf("unexpected result: %#v", got)
	}
}

func TestEvaluatePrecedence(t *testing.T) {
	if got := evalOn(t, "2 + 3 * 4", nil); got != float64(14) {
		t.Fatalf("precedence: %#v", got)
	}
	if got := evalOn(t, "(2 + 3) * 4", nil); got != float64(20) {
		t.Fatalf("grouping: %#v", got)
	}
	if got := evalOn(t, "-5 + 10", nil); got != float64(5) {
		t.Fatalf("unary minus: %#v", got)
	}
	if got := evalOn(t, "10 / 4", nil); got != float64(2.5) {
		t.Fatalf("division: %#v", got)
	}
}

func TestEvaluateStrings(t *testing.T) {
	data := map[string]any{"score": float64(21)}
	if got := evalOn(t, "'Score: ' + score", data); got != "Score: 21" {
		t.Fatalf("concat: %#v", got)
	}
	if got := evalOn(t, `"a" + 'b'`, nil); got != "ab" {
		t.Fatalf("string literal quoting: %#v", got)
	}
	if got := evalOn(t, `'it\'s' + "\n"`, nil); got != "it's\n" {
		t.Fatalf("escapes: %#v", got)
	}
}

func TestEvaluateTernaryAndComparisons(t *testing.T) {
	data := map[string]any{"score": float64(21)}
	if got := evalOn(t, "score > 10 ? 'severe' : 'mild'", data); got != "severe" {
		t.Fatalf("ternary: %#v", got)
	}
	if got := evalOn(t, "score <= 10 ? 'mild' : score <= 20 ? 'moderate' : 'severe'", data); got != "severe" {
		t.Fatalf("nested ternary: %#v", got)
	}
	if got := evalOn(t, "score == 21", data); got != true {
		t.Fatalf("equality: %#v", got)
	}
	if got := evalOn(t, "score != 'abc'", data); got != true {
		t.Fatalf("cross-type inequality: %#v", got)
	}
	if got := evalOn(t, "'apple' < 'banana'", nil); got != true {
		t.Fatalf("string comparison: %#v", got)
	}
}

func TestEvaluateErrors(t *testing.T) {
	ev := NewEvaluator()

	_, err := ev.Evaluate("1 / 0", nil)
	var ee *EvalError
	if !errors.As(err, &ee) || !strings.Contains(ee.Message, "division by zero") {
		t.Fatalf("expected division error, got %v", err)
	}

	_, err = ev.Evaluate("missing.path + 1", mapLookup(map[string]any{}))
	if !errors.As(err, &ee) || !strings.Contains(ee.Message, "unresolved reference") {
		t.Fatalf("expected unresolved reference, got %v", err)
	}

	_, err = ev.Evaluate("'a' - 2", nil)
	if !errors.As(err, &ee) {
		t.Fatalf("expected numeric operand error, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"2 +",
		"(2 + 3",
		"a ? b",
		"a ? b : ",
		"2 $ 3",
		"1 2",
		"a < b < c",
		"= 1",
		"'unterminated",
		"items[].count",
		"bad..ref",
	}
	ev := NewEvaluator()
	for _, src := range bad {
		_, err := ev.Evaluate(src, mapLookup(nil))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError for %q, got %v", src, err)
		}
	}
}

func TestCompileCachesPrograms(t *testing.T) {
	ev := NewEvaluator()
	p1, err := ev.Compile("a + b")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	p2, err := ev.Compile("a + b")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("expected cached program to be reused")
	}

	// Isolated evaluators own isolated caches.
	p3, err := NewEvaluator().Compile("a + b")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if p3 == p1 {
		t.Fatalf("separate evaluators must not share programs")
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	ev := NewEvaluator()
	data := map[string]any{"score": float64(12)}
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ev.Evaluate("score * 2 - 4", mapLookup(data))
			if err != nil {
				errs <- err
				return
			}
			if got != float64(20) {
				errs <- errors.New("wrong result")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent evaluate: %v", err)
	}
}

func TestFormatHints(t *testing.T) {
	if got := Format(float64(15), "deltaScore"); got != "+15" {
		t.Fatalf("deltaScore positive: %#v", got)
	}
	if got := Format(float64(-6), "deltaScore"); got != "-6" {
		t.Fatalf("deltaScore negative: %#v", got)
	}
	if got := Format(float64(0), "deltaScore"); got != "+0" {
		t.Fatalf("deltaScore zero: %#v", got)
	}
	if got := Format(0.1234, "percent"); got != "12.3%" {
		t.Fatalf("percent: %#v", got)
	}
	if got := Format(float64(1), "percent"); got != "100.0%" {
		t.Fatalf("percent whole: %#v", got)
	}
	if got := Format("stable", "deltaScore"); got != "stable" {
		t.Fatalf("non-number passthrough: %#v", got)
	}
	if got := Format(float64(7), "plain"); got != float64(7) {
		t.Fatalf("plain: %#v", got)
	}
	if got := Format(float64(7), ""); got != float64(7) {
		t.Fatalf("empty hint: %#v", got)
	}
}
