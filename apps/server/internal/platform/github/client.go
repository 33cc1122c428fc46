// Package github provides the factory for the go-github client used by the
// remote acquisition strategies. Only public repositories are supported; an
// optional personal access token raises the API rate limit but no GitHub App
// or installation auth is wired.
package github

import (
	"context"
	"net/http"
	"net/url"

	gogithub "github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
)

const defaultAPIURL = "https://api.github.com"

// NewClient creates a *github.Client. Pass token="" for anonymous access and
// baseURL="" for the real GitHub API; a custom baseURL (e.g. a local mock
// server) overrides the API host.
func NewClient(token, baseURL string) *gogithub.Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	c := gogithub.NewClient(httpClient)
	applyBaseURL(c, baseURL)
	return c
}

func applyBaseURL(c *gogithub.Client, baseURL string) {
	if baseURL == "" || baseURL == defaultAPIURL {
		return
	}
	u, err := url.Parse(baseURL + "/")
	if err != nil {
		return
	}
	c.BaseURL = u
}
