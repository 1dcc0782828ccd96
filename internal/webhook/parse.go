package webhook

import (
	"encoding/json"
	"strings"

	"questboard/internal/domain"
)

// payload целиком; разные виды используют разные подмножества полей
type payload struct {
	Action     string `json:"action"`
	Number     int    `json:"number"`
	Ref        string `json:"ref"`
	After      string `json:"after"`
	Zen        string `json:"zen"`
	HookID     int64  `json:"hook_id"`
	Sender     *actor `json:"sender"`
	Repository *struct {
		Name string `json:"name"`
	} `json:"repository"`
	Commits    []json.RawMessage `json:"commits"`
	HeadCommit *struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"head_commit"`
	PullRequest *struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		User   *actor `json:"user"`
		Merged bool   `json:"merged"`
	} `json:"pull_request"`
	Review *struct {
		State string `json:"state"`
		Body  string `json:"body"`
	} `json:"review"`
	Issue *struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		User   *actor `json:"user"`
	} `json:"issue"`
	Comment *struct {
		Body string `json:"body"`
		User *actor `json:"user"`
	} `json:"comment"`
}

type actor struct {
	Login string `json:"login"`
}

func (a *actor) login() string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(a.Login)
}

// Parse разбирает тело вебхука по виду события. Неизвестный вид не
// ошибка: возвращается UnsupportedEvent
func Parse(kind string, body []byte) (Event, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, domain.NewValidationError("X-GitHub-Event", "missing event kind")
	}

	switch kind {
	case KindPush, KindPullRequest, KindReview, KindIssues, KindIssueComment, KindPing:
	default:
		return UnsupportedEvent{Name: kind}, nil
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, domain.NewValidationError("body", "invalid json")
	}

	if kind == KindPing {
		return PingEvent{Zen: p.Zen, HookID: p.HookID}, nil
	}

	common, err := parseCommon(&p)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindPush:
		return parsePush(&p, common), nil
	case KindPullRequest:
		return parsePullRequest(&p, common)
	case KindReview:
		return parseReview(&p, common)
	case KindIssues:
		return parseIssues(&p, common)
	default:
		return parseIssueComment(&p, common)
	}
}

func parseCommon(p *payload) (Common, error) {
	sender := p.Sender.login()
	if sender == "" {
		return Common{}, domain.NewValidationError("sender.login", "required")
	}
	if p.Repository == nil || strings.TrimSpace(p.Repository.Name) == "" {
		return Common{}, domain.NewValidationError("repository.name", "required")
	}
	return Common{Action: p.Action, Repo: p.Repository.Name, Sender: sender}, nil
}

func parsePush(p *payload, c Common) PushEvent {
	ev := PushEvent{Common: c, Ref: p.Ref, After: p.After, CommitCount: len(p.Commits)}
	if p.HeadCommit != nil {
		ev.HeadCommitID = p.HeadCommit.ID
		ev.HeadMessage = p.HeadCommit.Message
	}
	return ev
}

func parsePullRequest(p *payload, c Common) (Event, error) {
	if c.Action == "" {
		return nil, domain.NewValidationError("action", "required")
	}
	if p.PullRequest == nil {
		return nil, domain.NewValidationError("pull_request", "required")
	}
	number := p.Number
	if number == 0 {
		number = p.PullRequest.Number
	}
	if number <= 0 {
		return nil, domain.NewValidationError("number", "required")
	}
	author := p.PullRequest.User.login()
	if author == "" {
		return nil, domain.NewValidationError("pull_request.user.login", "required")
	}
	return PullRequestEvent{
		Common: c,
		Number: number,
		Author: author,
		Title:  p.PullRequest.Title,
		Body:   p.PullRequest.Body,
		Merged: p.PullRequest.Merged,
	}, nil
}

func parseReview(p *payload, c Common) (Event, error) {
	if p.Review == nil || strings.TrimSpace(p.Review.State) == "" {
		return nil, domain.NewValidationError("review.state", "required")
	}
	if p.PullRequest == nil || p.PullRequest.Number <= 0 {
		return nil, domain.NewValidationError("pull_request.number", "required")
	}
	return ReviewEvent{
		Common:     c,
		Number:     p.PullRequest.Number,
		State:      strings.ToLower(p.Review.State),
		ReviewBody: p.Review.Body,
		PRTitle:    p.PullRequest.Title,
		PRBody:     p.PullRequest.Body,
	}, nil
}

func parseIssues(p *payload, c Common) (Event, error) {
	if c.Action == "" {
		return nil, domain.NewValidationError("action", "required")
	}
	if p.Issue == nil || p.Issue.Number <= 0 {
		return nil, domain.NewValidationError("issue.number", "required")
	}
	author := p.Issue.User.login()
	if author == "" {
		author = c.Sender
	}
	return IssuesEvent{
		Common: c,
		Number: p.Issue.Number,
		Author: author,
		Title:  p.Issue.Title,
		Body:   p.Issue.Body,
	}, nil
}

func parseIssueComment(p *payload, c Common) (Event, error) {
	if c.Action == "" {
		return nil, domain.NewValidationError("action", "required")
	}
	if p.Issue == nil || p.Issue.Number <= 0 {
		return nil, domain.NewValidationError("issue.number", "required")
	}
	if p.Comment == nil {
		return nil, domain.NewValidationError("comment", "required")
	}
	commenter := p.Comment.User.login()
	if commenter == "" {
		commenter = c.Sender
	}
	return IssueCommentEvent{
		Common:     c,
		Number:     p.Issue.Number,
		Commenter:  commenter,
		IssueTitle: p.Issue.Title,
		Body:       p.Comment.Body,
	}, nil
}
