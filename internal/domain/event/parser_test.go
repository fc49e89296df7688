package event_test

import (
	"testing"
	"time"

	"github.com/mgreer/custodian/internal/domain/event"
	"github.com/stretchr/testify/require"
)

func TestParser_IssueNotification(t *testing.T) {
	p := event.NewParser()
	rec := p.Parse(event.InboundEvent{
		Sender:     "notifications@github.com",
		Subject:    "[acme/widgets] Issue #42: ImportError in main.py when calling load_config()",
		Body:       "@carol opened this issue.\nTraceback shows ImportError in main.py inside load_config().",
		ReceivedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})

	require.Equal(t, event.KindIssue, rec.Kind)
	require.Equal(t, 42, rec.Number)
	require.Equal(t, "acme/widgets", rec.Repo)
	require.Equal(t, "ImportError in main.py when calling load_config()", rec.Title)
	require.Equal(t, "carol", rec.Author)
	require.False(t, rec.Closed)
	require.Contains(t, rec.Files, "main.py")
	require.Contains(t, rec.Functions, "load_config")
	require.Contains(t, rec.ErrorTerms, "importerror")
	require.Contains(t, rec.ErrorTerms, "error")
}

func TestParser_Classify(t *testing.T) {
	p := event.NewParser()

	tests := []struct {
		name    string
		subject string
		body    string
		want    event.Kind
	}{
		{"issue", "[a/b] Issue #1: crash on startup", "", event.KindIssue},
		{"bug report", "Bug report: crash on startup", "", event.KindIssue},
		{"pull request", "[a/b] Pull Request #7: add retries", "", event.KindPullRequest},
		{"pr shorthand", "PR #7 opened against main", "", event.KindPullRequest},
		{"review", "Review requested on #7", "", event.KindReview},
		{"approved", "#7 approved by dana", "", event.KindReview},
		{"comment", "Re: dana commented on #3", "", event.KindComment},
		{"question by prefix", "How do I configure the cache?", "", event.KindQuestion},
		{"question by density", "Quick one", "Does the cache persist across restarts?", event.KindQuestion},
		{"unknown", "Weekly digest", "Nothing of note happened.", event.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := p.Parse(event.InboundEvent{Subject: tt.subject, Body: tt.body})
			require.Equal(t, tt.want, rec.Kind)
		})
	}
}

func TestParser_ClosedAndMerged(t *testing.T) {
	p := event.NewParser()

	closed := p.Parse(event.InboundEvent{Subject: "[a/b] Pull Request #7: add retries (closed)"})
	require.True(t, closed.Closed)

	merged := p.Parse(event.InboundEvent{Subject: "[a/b] Pull Request #7: add retries was merged"})
	require.True(t, merged.Closed)

	open := p.Parse(event.InboundEvent{Subject: "[a/b] Pull Request #7: add retries"})
	require.False(t, open.Closed)
}

func TestParser_FileDenylist(t *testing.T) {
	p := event.NewParser()
	rec := p.Parse(event.InboundEvent{
		Subject: "Issue #1: broken link",
		Body:    "See example.com and config.yaml, e.g. the loader.",
	})

	require.Contains(t, rec.Files, "config.yaml")
	require.NotContains(t, rec.Files, "example.com")
	require.NotContains(t, rec.Files, "e.g")
}

func TestParser_TokensSortedAndDeduplicated(t *testing.T) {
	p := event.NewParser()
	rec := p.Parse(event.InboundEvent{
		Subject: "Issue #9: failure",
		Body:    "main.py again main.py, also utils.py. Calls run() and build() and run().",
	})

	require.Equal(t, []string{"main.py", "utils.py"}, rec.Files)
	require.Equal(t, []string{"build", "run"}, rec.Functions)
}

func TestParser_UnparsableDegradesToUnknown(t *testing.T) {
	p := event.NewParser()
	rec := p.Parse(event.InboundEvent{Subject: "", Body: ""})

	require.Equal(t, event.KindUnknown, rec.Kind)
	require.Zero(t, rec.Number)
	require.Empty(t, rec.Files)
	require.Empty(t, rec.Words)
}

func TestNormalize(t *testing.T) {
	words := event.Normalize("The Cache is BROKEN, broken when the cache restarts!")
	require.Equal(t, []string{"broken", "cache", "restarts"}, words)
}

func TestNormalize_DropsShortAndStopWords(t *testing.T) {
	require.Nil(t, event.Normalize("it is a to of"))
	require.Nil(t, event.Normalize(""))
}
