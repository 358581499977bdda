package resolve

import (
	"strconv"
	"strings"
)

// Fallback rate for slicing raw text by time range when a transcript carries
// no per-segment timestamps.
const fallbackCharsPerSecond = 15

type verbatimRef struct {
	Source  string
	DocID   string
	Locator string
	Raw     string
}

// parseVerbatimRef splits "source:id#locator". The locator is optional;
// source and id are not.
func parseVerbatimRef(raw string) (*verbatimRef, error) {
	base := raw
	locator := ""
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		base, locator = raw[:i], raw[i+1:]
		if locator == "" {
			return nil, failf(ReasonInvalidRef, "verbatim ref %q: empty locator", raw)
		}
	}
	colon := strings.IndexByte(base, ':')
	if colon <= 0 || colon == len(base)-1 {
		return nil, failf(ReasonInvalidRef, "verbatim ref %q: expected source:id", raw)
	}
	return &verbatimRef{Source: base[:colon], DocID: base[colon+1:], Locator: locator, Raw: raw}, nil
}

// extract pulls the referenced text out of a source document, honoring the
// optional time-range or page locator.
func extract(ref *verbatimRef, doc map[string]any) (string, error) {
	switch {
	case ref.Locator == "":
		text, ok := docText(doc)
		if !ok {
			return "", failf(ReasonMissingSource, "document %q has no text", ref.DocID)
		}
		return text, nil
	case strings.HasPrefix(ref.Locator, "t="):
		start, end, err := parseTimeRange(ref)
		if err != nil {
			return "", err
		}
		return sliceByTime(ref, doc, start, end)
	case strings.HasPrefix(ref.Locator, "p="):
		page, err := strconv.Atoi(ref.Locator[2:])
		if err != nil || page < 1 {
			return "", failf(ReasonInvalidRef, "verbatim ref %q: page locator must be a positive integer", ref.Raw)
		}
		return pageText(ref, doc, page)
	}
	return "", failf(ReasonInvalidRef, "verbatim ref %q: unknown locator %q", ref.Raw, ref.Locator)
}

func parseTimeRange(ref *verbatimRef) (float64, float64, error) {
	spec := ref.Locator[2:]
	dash := strings.IndexByte(spec, '-')
	if dash <= 0 || dash == len(spec)-1 {
		return 0, 0, failf(ReasonInvalidRef, "verbatim ref %q: time locator must be t=START-END", ref.Raw)
	}
	start, err1 := strconv.ParseFloat(spec[:dash], 64)
	end, err2 := strconv.ParseFloat(spec[dash+1:], 64)
	if err1 != nil || err2 != nil || start < 0 || end < start {
		return 0, 0, failf(ReasonInvalidRef, "verbatim ref %q: bad time range", ref.Raw)
	}
	return start, end, nil
}

// sliceByTime joins the text of all timestamped segments overlapping
// [start, end]. Documents without segments fall back to slicing the raw
// text at a fixed characters-per-second rate.
func sliceByTime(ref *verbatimRef, doc map[string]any, start, end float64) (string, error) {
	if segsAny, ok := doc["segments"].([]any); ok && len(segsAny) > 0 {
		var parts []string
		for _, segAny := range segsAny {
			seg, ok := segAny.(map[string]any)
			if !ok {
				continue
			}
			segStart, ok1 := floatValue(seg["start"])
			segEnd, ok2 := floatValue(seg["end"])
			text, ok3 := seg["text"].(string)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			if segStart <= end && segEnd >= start {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, " "), nil
	}
	raw, ok := docText(doc)
	if !ok {
		return "", failf(ReasonMissingSource, "document %q has no segments and no text", ref.DocID)
	}
	lo := int(start * fallbackCharsPerSecond)
	hi := int(end * fallbackCharsPerSecond)
	if lo >= len(raw) {
		return "", nil
	}
	if hi > len(raw) {
		hi = len(raw)
	}
	return raw[lo:hi], nil
}

func pageText(ref *verbatimRef, doc map[string]any, page int) (string, error) {
	pages, ok := doc["pages"].([]any)
	if !ok || len(pages) == 0 {
		return "", failf(ReasonMissingSource, "document %q has no pages", ref.DocID)
	}
	if page > len(pages) {
		return "", failf(ReasonMissingSource, "document %q has no page %d", ref.DocID, page)
	}
	switch p := pages[page-1].(type) {
	case string:
		return p, nil
	case map[string]any:
		if text, ok := p["text"].(string); ok {
			return text, nil
		}
	}
	return "", failf(ReasonMissingSource, "document %q: page %d has no text", ref.DocID, page)
}

// docText accepts both "text" and "content" as the raw body key.
func docText(doc map[string]any) (string, bool) {
	if text, ok := doc["text"].(string); ok && text != "" {
		return text, true
	}
	if text, ok := doc["content"].(string); ok && text != "" {
		return text, true
	}
	return "", false
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
