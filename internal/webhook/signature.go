package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrBadSignature     = errors.New("webhook signature mismatch")
)

const signaturePrefix = "sha256="

// VerifySignature проверяет X-Hub-Signature-256: HMAC-SHA256 тела
// с общим секретом, в hex с префиксом sha256=
func VerifySignature(secret string, body []byte, header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}
	if !strings.HasPrefix(header, signaturePrefix) {
		return ErrBadSignature
	}

	provided, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return ErrBadSignature
	}

	if !hmac.Equal(Sign(secret, body), provided) {
		return ErrBadSignature
	}
	return nil
}

// Sign считает подпись тела; используется и в тестах отправителя
func Sign(secret string, body []byte) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return h.Sum(nil)
}

// SignatureHeader - значение заголовка для тела
func SignatureHeader(secret string, body []byte) string {
	return signaturePrefix + hex.EncodeToString(Sign(secret, body))
}

// DeliveryKey - ключ дедупликации доставки. GitHub присылает уникальный
// X-GitHub-Delivery; без него ключ строится из полей события.
// Пустой ключ: push без SHA нечем отличить от следующего, дедупликация не нужна
func DeliveryKey(deliveryID string, ev Event) string {
	if id := strings.TrimSpace(deliveryID); id != "" {
		return "delivery:" + id
	}

	var action, repo, sender, head string
	var number int
	switch e := ev.(type) {
	case PushEvent:
		head = e.After
		if head == "" {
			head = e.HeadCommitID
		}
		if head == "" {
			return ""
		}
		action, repo, sender = e.Ref, e.Repo, e.Sender
		number = e.CommitCount
	case PullRequestEvent:
		action, repo, sender, number = e.Action, e.Repo, e.Sender, e.Number
	case ReviewEvent:
		action, repo, sender, number = e.Action+"/"+e.State, e.Repo, e.Sender, e.Number
	case IssuesEvent:
		action, repo, sender, number = e.Action, e.Repo, e.Sender, e.Number
	case IssueCommentEvent:
		action, repo, sender, number = e.Action, e.Repo, e.Sender, e.Number
		head = e.Body
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d|%s|%s", ev.Kind(), action, repo, number, sender, head)))
	return "event:" + hex.EncodeToString(sum[:])
}
