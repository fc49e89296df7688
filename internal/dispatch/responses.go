package dispatch

import (
	"fmt"
	"regexp"
	"strings"
)

var reDisplayName = regexp.MustCompile(`^([^<]+)<`)

// senderName extracts a display name from "Name <addr>" senders,
// falling back to the mailbox local part.
func senderName(sender string) string {
	if m := reDisplayName.FindStringSubmatch(sender); m != nil {
		return strings.TrimSpace(m[1])
	}
	if i := strings.Index(sender, "@"); i > 0 {
		return sender[:i]
	}
	return sender
}

func orRepo(repo string) string {
	if repo == "" {
		return "this repository"
	}
	return repo
}

func renderNewIssue(name, repo string) string {
	return fmt.Sprintf(
		"Hello %s,\n\nThanks for opening this issue in %s. We've received your report and are tracking it as new.\n\nTo help us resolve it quickly, please make sure you've included steps to reproduce, expected vs actual behavior, and your environment details.\n\nWe'll investigate and get back to you soon.",
		name, orRepo(repo))
}

func renderDuplicate(name, repo string, repNumber, reportCount int) string {
	ref := "an earlier report"
	if repNumber > 0 {
		ref = fmt.Sprintf("#%d", repNumber)
	}
	return fmt.Sprintf(
		"Hello %s,\n\nThanks for reporting this. It looks like a duplicate of %s in %s, which has now been reported %d time(s).\n\nWe're consolidating the reports; please add any details unique to your case (environment, workarounds) to the original thread.",
		name, ref, orRepo(repo), reportCount)
}

func renderAnswer(name, answer string) string {
	return fmt.Sprintf(
		"Hello %s,\n\nThis has come up before, so here's what we know:\n\n%s\n\nIf this doesn't cover your case, reply and a maintainer will take a closer look.",
		name, answer)
}

func renderEscalation(name string) string {
	return fmt.Sprintf(
		"Hello %s,\n\nThanks for the question. We don't have a recorded answer for this one yet, so it has been forwarded to a maintainer. You'll hear back as soon as someone has looked at it.",
		name)
}

func renderPRAck(name, repo string, resolved, review bool) string {
	switch {
	case resolved:
		return fmt.Sprintf(
			"Hello %s,\n\nThe pull request in %s has been closed. Thanks for the contribution.",
			name, orRepo(repo))
	case review:
		return fmt.Sprintf(
			"Hello %s,\n\nThanks for the review activity on %s. The pull request's activity clock has been updated.",
			name, orRepo(repo))
	default:
		return fmt.Sprintf(
			"Hello %s,\n\nThanks for your pull request to %s. A maintainer will review it; make sure tests pass and docs are updated in the meantime.",
			name, orRepo(repo))
	}
}

func renderGeneric(name string) string {
	return fmt.Sprintf(
		"Hello %s,\n\nThanks for your message. It doesn't look like a repository notification we handle automatically, but it has been recorded and a maintainer can follow up if needed.",
		name)
}
