package analyzer

import (
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// CommitInfo is a minimal, provider-agnostic view of one commit: its
// subject/body and the paths it touched. Kept separate from go-git's own
// object.Commit so the scoring package never imports go-git directly.
type CommitInfo struct {
	Hash    string
	Message string
	Files   []string
}

// GitHistoryProvider supplies recent commit history for the optional
// bug-fix-density context signal. Abstracted behind an interface so the
// scorer and orchestrator never depend on go-git directly, and so tests
// can supply canned history without a real repository.
type GitHistoryProvider interface {
	RecentCommits(repoPath string, limit int) ([]CommitInfo, error)
}

// GoGitHistoryProvider implements GitHistoryProvider via go-git, walking
// the commit log from HEAD.
type GoGitHistoryProvider struct{}

// NewGoGitHistoryProvider builds a GitHistoryProvider backed by go-git.
func NewGoGitHistoryProvider() *GoGitHistoryProvider {
	return &GoGitHistoryProvider{}
}

// RecentCommits walks up to limit commits from HEAD (0 means unbounded),
// returning each commit's subject/body and changed file paths relative to
// the repository root.
func (p *GoGitHistoryProvider) RecentCommits(repoPath string, limit int) ([]CommitInfo, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, err
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return storer.ErrStop
		}
		stats, statErr := c.Stats()
		if statErr != nil {
			return nil
		}
		files := make([]string, 0, len(stats))
		for _, s := range stats {
			files = append(files, s.Name)
		}
		commits = append(commits, CommitInfo{
			Hash:    c.Hash.String(),
			Message: c.Message,
			Files:   files,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// bugfixSubjectPattern classifies a commit subject line as a bug fix.
// Matches the common "fix"/"fixing", "bug", "hotfix", "patch", "crash",
// "regression", "issue" vocabulary rather than requiring a strict
// Conventional Commits "fix:" prefix, since history predating any such
// convention should still count.
var bugfixSubjectPattern = regexp.MustCompile(`(?i)\b(fix(e[sd]|ing)?|bug|hotfix|patch(es|ed)?|crash|regression|issue)\b`)

// nonBugfixPrefixPattern matches subjects typed as non-bug work
// ("style:", "chore:", "docs:", "test:", "refactor:", optionally scoped).
var nonBugfixPrefixPattern = regexp.MustCompile(`(?i)^\s*(style|chore|docs|test|refactor)(\([^)]*\))?!?:`)

// nonBugfixKeywordPattern matches maintenance keywords that are not bug work.
var nonBugfixKeywordPattern = regexp.MustCompile(`(?i)\b(formatting|linting|whitespace|typo)\b`)

// IsBugFixCommit reports whether subject reads as a bug-fix commit. A
// subject matching nonBugfixPrefixPattern or nonBugfixKeywordPattern never
// counts, even if it also contains bug-fix vocabulary.
func IsBugFixCommit(subject string) bool {
	if nonBugfixPrefixPattern.MatchString(subject) || nonBugfixKeywordPattern.MatchString(subject) {
		return false
	}
	return bugfixSubjectPattern.MatchString(subject)
}

// BugFixDensity computes, per touched file path, the fraction of commits
// touching that file whose subject line classifies as a bug fix. A file
// never touched by any commit is absent from the result (callers should
// treat a missing key as density 0).
func BugFixDensity(commits []CommitInfo) map[string]float64 {
	totals := make(map[string]int)
	fixes := make(map[string]int)
	for _, c := range commits {
		subject := c.Message
		if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
			subject = subject[:idx]
		}
		isFix := IsBugFixCommit(subject)
		for _, f := range c.Files {
			totals[f]++
			if isFix {
				fixes[f]++
			}
		}
	}
	density := make(map[string]float64, len(totals))
	for f, total := range totals {
		density[f] = float64(fixes[f]) / float64(total)
	}
	return density
}
