// Package provider resolves a provider-spec config into a concrete list of
// repositories by querying a hosted GitHub-style or GitLab-style API.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Errors surfaced by provider operations.
var (
	ErrHTTPFailure     = errors.New("provider http request failed")
	ErrJSONFailure     = errors.New("provider response could not be decoded")
	ErrUnknownResponse = errors.New("provider returned an unexpected response shape")
)

// ProviderError wraps a provider-reported error message.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string { return fmt.Sprintf("provider error: %s", e.Message) }

// Project is a single repository as reported by a provider API.
type Project struct {
	Name          string
	Namespace     string
	Private       bool
	SSHURLToRepo  string
	HTTPURLToRepo string
}

// Resolver is the common contract both GitHub-style and GitLab-style
// providers implement.
type Resolver interface {
	GetUserProjects(ctx context.Context, user string) ([]Project, error)
	GetGroupProjects(ctx context.Context, group string) ([]Project, error)
	GetOwnProjects(ctx context.Context) ([]Project, error)
	GetAccessibleProjects(ctx context.Context) ([]Project, error)
}

// Kind selects which provider API shape to speak.
type Kind int

const (
	GitHub Kind = iota
	GitLab
)

// New builds a Resolver for kind, talking to apiURL (or the provider's
// public default when apiURL is empty) using token for authorization.
func New(kind Kind, apiURL, token string) Resolver {
	switch kind {
	case GitLab:
		return newGitLabResolver(apiURL, token)
	default:
		return newGitHubResolver(apiURL, token)
	}
}
