// Package webhook разбирает вебхуки GitHub в типизированные события.
// Обязательные поля каждого вида проверяются на границе разбора,
// ошибка разбора всегда *domain.ValidationError.
package webhook

// Виды событий (заголовок X-GitHub-Event)
const (
	KindPush         = "push"
	KindPullRequest  = "pull_request"
	KindReview       = "pull_request_review"
	KindIssues       = "issues"
	KindIssueComment = "issue_comment"
	KindPing         = "ping"
)

// Event - одно из событий ниже
type Event interface {
	Kind() string
}

// поля, общие для событий репозитория
type Common struct {
	Action string
	Repo   string
	Sender string
}

type PushEvent struct {
	Common
	Ref          string
	After        string // SHA ветки после push
	CommitCount  int
	HeadCommitID string
	HeadMessage  string
}

type PullRequestEvent struct {
	Common
	Number int
	Author string // автор PR, может отличаться от отправителя
	Title  string
	Body   string
	Merged bool
}

type ReviewEvent struct {
	Common
	Number     int
	State      string // approved, changes_requested, commented, dismissed
	ReviewBody string
	PRTitle    string
	PRBody     string
}

type IssuesEvent struct {
	Common
	Number int
	Author string
	Title  string
	Body   string
}

type IssueCommentEvent struct {
	Common
	Number     int
	Commenter  string
	IssueTitle string
	Body       string
}

type PingEvent struct {
	Zen    string
	HookID int64
}

// UnsupportedEvent - вид, для которого нет правил начисления
type UnsupportedEvent struct {
	Name string
}

func (PushEvent) Kind() string          { return KindPush }
func (PullRequestEvent) Kind() string   { return KindPullRequest }
func (ReviewEvent) Kind() string        { return KindReview }
func (IssuesEvent) Kind() string        { return KindIssues }
func (IssueCommentEvent) Kind() string  { return KindIssueComment }
func (PingEvent) Kind() string          { return KindPing }
func (e UnsupportedEvent) Kind() string { return e.Name }
