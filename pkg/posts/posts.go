// Package posts maps the JSONPlaceholder /posts resource onto httpclient calls.
package posts

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/samvad-hq/postboard/internal/domain"
	"github.com/samvad-hq/postboard/pkg/httpclient"
	"github.com/samvad-hq/postboard/pkg/jsonvalue"
)

const (
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	resourcePath   = "/posts"
)

// API issues post requests against a fixed origin.
type API struct {
	client  *httpclient.Client
	baseURL string
}

// NewAPI binds client to baseURL (DefaultBaseURL when empty).
func NewAPI(client *httpclient.Client, baseURL string) *API {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &API{client: client, baseURL: baseURL}
}

func (a *API) BaseURL() string { return a.baseURL }

// CollectionURL returns {base}/posts, filtered by userID when set.
func (a *API) CollectionURL(userID string) string {
	u := a.baseURL + resourcePath
	if userID = strings.TrimSpace(userID); userID != "" {
		u += "?userId=" + url.QueryEscape(userID)
	}
	return u
}

// ItemURL returns {base}/posts/{id}.
func (a *API) ItemURL(id string) string {
	return a.baseURL + resourcePath + "/" + url.PathEscape(strings.TrimSpace(id))
}

func (a *API) List(ctx context.Context, userID string) *httpclient.Call {
	return a.client.Get(ctx, a.CollectionURL(userID), nil)
}

func (a *API) Get(ctx context.Context, id string) *httpclient.Call {
	return a.client.Get(ctx, a.ItemURL(id), nil)
}

func (a *API) Create(ctx context.Context, d domain.Draft) *httpclient.Call {
	return a.client.Post(ctx, a.CollectionURL(""), DraftParams(d), nil, httpclient.EncodingForm)
}

func (a *API) Update(ctx context.Context, id string, d domain.Draft) *httpclient.Call {
	return a.client.Put(ctx, a.ItemURL(id), DraftParams(d), nil, httpclient.EncodingForm)
}

func (a *API) Delete(ctx context.Context, id string) *httpclient.Call {
	return a.client.Delete(ctx, a.ItemURL(id), nil, nil, httpclient.EncodingForm)
}

// DraftParams builds the title/body/userId params. Numeric user ids are sent as numbers.
func DraftParams(d domain.Draft) httpclient.Params {
	var p httpclient.Params
	p.Set("title", jsonvalue.FromString(d.Title))
	p.Set("body", jsonvalue.FromString(d.Body))

	userID := strings.TrimSpace(d.UserID)
	if n, err := strconv.ParseInt(userID, 10, 64); err == nil {
		p.Set("userId", jsonvalue.FromInt(n))
	} else if userID != "" {
		p.Set("userId", jsonvalue.FromString(userID))
	}
	return p
}
