package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questboard/internal/domain"
)

func TestParse_PullRequest(t *testing.T) {
	body := `{
		"action": "opened",
		"number": 42,
		"sender": {"login": "bot-user"},
		"repository": {"name": "questboard"},
		"pull_request": {"title": "Login fix", "body": "Fixes bug #bug and #feature", "user": {"login": "alice"}, "merged": false}
	}`

	ev, err := Parse(KindPullRequest, []byte(body))
	require.NoError(t, err)

	pr, ok := ev.(PullRequestEvent)
	require.True(t, ok)
	assert.Equal(t, "opened", pr.Action)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "alice", pr.Author)
	assert.Equal(t, "bot-user", pr.Sender)
	assert.Equal(t, "questboard", pr.Repo)
	assert.False(t, pr.Merged)
}

func TestParse_Review(t *testing.T) {
	body := `{
		"action": "submitted",
		"sender": {"login": "bob"},
		"repository": {"name": "questboard"},
		"review": {"state": "COMMENTED", "body": "nit #refactor"},
		"pull_request": {"number": 7, "title": "Cleanup", "user": {"login": "alice"}}
	}`

	ev, err := Parse(KindReview, []byte(body))
	require.NoError(t, err)

	r := ev.(ReviewEvent)
	assert.Equal(t, "commented", r.State)
	assert.Equal(t, 7, r.Number)
	assert.Equal(t, "bob", r.Sender)
	assert.Equal(t, "nit #refactor", r.ReviewBody)
}

func TestParse_Push(t *testing.T) {
	body := `{
		"ref": "refs/heads/main",
		"after": "c",
		"sender": {"login": "alice"},
		"repository": {"name": "questboard"},
		"commits": [{"id": "a"}, {"id": "b"}, {"id": "c"}],
		"head_commit": {"id": "c", "message": "final"}
	}`

	ev, err := Parse(KindPush, []byte(body))
	require.NoError(t, err)

	p := ev.(PushEvent)
	assert.Equal(t, 3, p.CommitCount)
	assert.Equal(t, "c", p.HeadCommitID)
	assert.Equal(t, "c", p.After)
	assert.Equal(t, "refs/heads/main", p.Ref)
}

func TestParse_IssueComment(t *testing.T) {
	body := `{
		"action": "created",
		"sender": {"login": "carol"},
		"repository": {"name": "questboard"},
		"issue": {"number": 3, "title": "Crash"},
		"comment": {"body": "same here", "user": {"login": "carol"}}
	}`

	ev, err := Parse(KindIssueComment, []byte(body))
	require.NoError(t, err)

	c := ev.(IssueCommentEvent)
	assert.Equal(t, "carol", c.Commenter)
	assert.Equal(t, 3, c.Number)
}

func TestParse_PingAndUnsupported(t *testing.T) {
	ev, err := Parse(KindPing, []byte(`{"zen": "Keep it simple", "hook_id": 9}`))
	require.NoError(t, err)
	assert.Equal(t, PingEvent{Zen: "Keep it simple", HookID: 9}, ev)

	ev, err = Parse("star", []byte(`not even json`))
	require.NoError(t, err)
	assert.Equal(t, UnsupportedEvent{Name: "star"}, ev)
	assert.Equal(t, "star", ev.Kind())
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		body  string
		field string
	}{
		{"no kind", "", `{}`, "X-GitHub-Event"},
		{"bad json", KindPush, `{`, "body"},
		{"no sender", KindPush, `{"repository": {"name": "r"}}`, "sender.login"},
		{"no repo", KindPush, `{"sender": {"login": "a"}}`, "repository.name"},
		{"pr without body", KindPullRequest, `{"action": "opened", "number": 1, "sender": {"login": "a"}, "repository": {"name": "r"}}`, "pull_request"},
		{"pr without author", KindPullRequest, `{"action": "opened", "number": 1, "sender": {"login": "a"}, "repository": {"name": "r"}, "pull_request": {}}`, "pull_request.user.login"},
		{"pr without number", KindPullRequest, `{"action": "opened", "sender": {"login": "a"}, "repository": {"name": "r"}, "pull_request": {"user": {"login": "a"}}}`, "number"},
		{"review without state", KindReview, `{"sender": {"login": "a"}, "repository": {"name": "r"}, "review": {}, "pull_request": {"number": 1}}`, "review.state"},
		{"review without pr", KindReview, `{"sender": {"login": "a"}, "repository": {"name": "r"}, "review": {"state": "approved"}}`, "pull_request.number"},
		{"issue without issue", KindIssues, `{"action": "opened", "sender": {"login": "a"}, "repository": {"name": "r"}}`, "issue.number"},
		{"comment without comment", KindIssueComment, `{"action": "created", "sender": {"login": "a"}, "repository": {"name": "r"}, "issue": {"number": 1}}`, "comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.kind, []byte(tt.body))
			require.ErrorIs(t, err, domain.ErrValidation)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
