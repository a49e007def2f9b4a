package posts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samvad-hq/postboard/internal/domain"
	"github.com/samvad-hq/postboard/pkg/httpclient"
	"github.com/samvad-hq/postboard/pkg/jsonvalue"
)

// ParsePost builds a Post from a decoded object. id, title and body are required;
// userId may be a number or a string and is optional.
func ParsePost(obj jsonvalue.Object, createdManually bool) (domain.Post, error) {
	id, ok := identifier(obj["id"])
	if !ok {
		return domain.Post{}, fieldError("id")
	}
	title, ok := obj["title"].AsString()
	if !ok {
		return domain.Post{}, fieldError("title")
	}
	body, ok := obj["body"].AsString()
	if !ok {
		return domain.Post{}, fieldError("body")
	}

	userID, _ := identifier(obj["userId"])

	return domain.Post{
		ID:              id,
		UserID:          userID,
		Title:           title,
		Body:            body,
		CreatedManually: createdManually,
	}, nil
}

// ParseEnvelope builds a Post from an object-shaped envelope.
func ParseEnvelope(env httpclient.Envelope, createdManually bool) (domain.Post, error) {
	return ParsePost(env.Object(), createdManually)
}

// ParsePosts reads the wrapped array of a list envelope. Entries that are not valid
// posts are skipped; their errors are joined into the returned error alongside the
// posts that did parse.
func ParsePosts(env httpclient.Envelope) ([]domain.Post, error) {
	items, ok := env.Data()
	if !ok {
		return nil, httpclient.NewApplicationError(httpclient.MsgParsing)
	}

	out := make([]domain.Post, 0, len(items))
	var errs []error
	for i, item := range items {
		obj, ok := item.AsObject()
		if !ok {
			errs = append(errs, fmt.Errorf("post[%d]: %w", i, httpclient.NewApplicationError("post is not an object")))
			continue
		}
		post, err := ParsePost(obj, false)
		if err != nil {
			errs = append(errs, fmt.Errorf("post[%d]: %w", i, err))
			continue
		}
		out = append(out, post)
	}
	return out, errors.Join(errs...)
}

func fieldError(field string) error {
	return httpclient.NewApplicationError(fmt.Sprintf("post field %q is missing or has the wrong type", field))
}

// identifier renders a number or non-empty string as text. Integral numbers drop any
// fraction; numbers outside int64 keep their literal so no identifier is rewritten.
func identifier(v jsonvalue.Value) (string, bool) {
	switch v.Kind() {
	case jsonvalue.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		return s, s != ""
	case jsonvalue.KindNumber:
		num, _ := v.AsNumber()
		if n, err := num.Int64(); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		if n, ok := v.AsInt(); ok {
			return strconv.FormatInt(n, 10), true
		}
		return num.String(), true
	default:
		return "", false
	}
}
