package event

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reNumber = regexp.MustCompile(`#(\d+)`)
	reRepo   = regexp.MustCompile(`\[([^/\]]+/[^\]]+)\]`)
	reTitle  = regexp.MustCompile(`#\d+:\s*(.+)$`)
	reFile   = regexp.MustCompile(`[a-zA-Z0-9_][a-zA-Z0-9_./\-]*\.[a-zA-Z]{2,4}\b`)
	reFunc   = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\(\)`)

	reAuthor = []*regexp.Regexp{
		regexp.MustCompile(`@(\w+)\s+opened`),
		regexp.MustCompile(`@(\w+)\s+commented`),
		regexp.MustCompile(`Author:\s*@?(\w+)`),
		regexp.MustCompile(`(\w+)\s+opened`),
	}
)

// errorVocabulary is the curated set of error indicators matched
// case-insensitively against subject and body.
var errorVocabulary = []string{
	"error", "exception", "traceback", "stack trace", "failed", "crash",
	"panic", "broken", "not working", "typeerror", "valueerror",
	"attributeerror", "importerror", "keyerror", "segfault", "nil pointer",
}

// fileExtensionDenylist filters file-pattern matches that are really
// prose abbreviations or domains, not source paths.
var fileExtensionDenylist = map[string]bool{
	"com": true, "org": true, "net": true, "io": true, "etc": true,
}

// Parser turns inbound events into ParsedRecords. It is stateless and
// safe for concurrent use.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts a structured record from an inbound event. It never
// returns an error: unrecognizable input degrades to KindUnknown so
// downstream routing always has a well-formed record.
func (p *Parser) Parse(ev InboundEvent) ParsedRecord {
	text := ev.Subject + "\n" + ev.Body

	rec := ParsedRecord{
		Kind:       classify(ev.Subject, ev.Body),
		Files:      extractFiles(text),
		Functions:  extractFunctions(text),
		ErrorTerms: extractErrorTerms(text),
		Words:      Normalize(ev.Body),
		ReceivedAt: ev.ReceivedAt,
	}

	if m := reNumber.FindStringSubmatch(ev.Subject); m != nil {
		rec.Number, _ = strconv.Atoi(m[1])
	}
	if m := reRepo.FindStringSubmatch(ev.Subject); m != nil {
		rec.Repo = m[1]
	}
	if m := reTitle.FindStringSubmatch(ev.Subject); m != nil {
		rec.Title = strings.TrimSpace(m[1])
	}
	for _, re := range reAuthor {
		if m := re.FindStringSubmatch(ev.Body); m != nil {
			rec.Author = m[1]
			break
		}
	}

	lower := strings.ToLower(ev.Subject)
	rec.Closed = strings.Contains(lower, "closed") || strings.Contains(lower, "merged")

	return rec
}

// classify infers the entity kind from structural cues in subject and
// body. Order matters: pull request and review cues outrank the generic
// issue and question checks.
func classify(subject, body string) Kind {
	s := strings.ToLower(subject)

	switch {
	case containsAny(s, "review requested", "approved", "requested changes", "reviewed"):
		return KindReview
	case containsAny(s, "pull request", "pr #", "pr opened"):
		return KindPullRequest
	case containsAny(s, "commented", "comment on", "replied to"):
		return KindComment
	case containsAny(s, "issue", "bug report"):
		return KindIssue
	}

	if looksLikeQuestion(subject + " " + body) {
		return KindQuestion
	}
	return KindUnknown
}

// looksLikeQuestion reports whether the question-mark density of the
// text crosses the classification threshold, or the text opens with an
// interrogative.
func looksLikeQuestion(text string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(text))
	if trimmed == "" {
		return false
	}

	for _, w := range []string{"how ", "what ", "why ", "when ", "where ", "which ", "can i ", "could you ", "should i "} {
		if strings.HasPrefix(trimmed, w) {
			return true
		}
	}

	sentences := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	if len(sentences) == 0 {
		return false
	}
	marks := strings.Count(trimmed, "?")
	return float64(marks)/float64(len(sentences)) >= 0.3
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func extractFiles(text string) []string {
	matches := reFile.FindAllString(text, -1)
	out := make(map[string]bool)
	for _, m := range matches {
		lower := strings.ToLower(m)
		ext := lower[strings.LastIndex(lower, ".")+1:]
		if fileExtensionDenylist[ext] {
			continue
		}
		out[lower] = true
	}
	return sortedKeys(out)
}

func extractFunctions(text string) []string {
	matches := reFunc.FindAllStringSubmatch(text, -1)
	out := make(map[string]bool)
	for _, m := range matches {
		out[strings.ToLower(m[1])] = true
	}
	return sortedKeys(out)
}

func extractErrorTerms(text string) []string {
	lower := strings.ToLower(text)
	out := make(map[string]bool)
	for _, term := range errorVocabulary {
		if strings.Contains(lower, term) {
			out[term] = true
		}
	}
	return sortedKeys(out)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
