package provider

import (
	"context"
	"fmt"
)

const githubDefaultAPIURL = "https://api.github.com"

type githubResolver struct {
	http *httpClient
}

func newGitHubResolver(apiURL, token string) *githubResolver {
	if apiURL == "" {
		apiURL = githubDefaultAPIURL
	}
	return &githubResolver{http: newHTTPClient(apiURL, "application/vnd.github+json", "token", token)}
}

type githubRepo struct {
	Name     string `json:"name"`
	Private  bool   `json:"private"`
	SSHURL   string `json:"ssh_url"`
	CloneURL string `json:"clone_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type githubUser struct {
	Login string `json:"login"`
}

func (r *githubResolver) toProject(g githubRepo) Project {
	return Project{
		Name:          g.Name,
		Namespace:     g.Owner.Login,
		Private:       g.Private,
		SSHURLToRepo:  g.SSHURL,
		HTTPURLToRepo: g.CloneURL,
	}
}

func (r *githubResolver) GetUserProjects(ctx context.Context, user string) ([]Project, error) {
	repos, err := getAllPages[githubRepo](ctx, r.http, r.http.baseURL+"/users/"+user+"/repos?per_page=100")
	if err != nil {
		return nil, err
	}
	return toProjects(repos, r.toProject), nil
}

func (r *githubResolver) GetGroupProjects(ctx context.Context, group string) ([]Project, error) {
	repos, err := getAllPages[githubRepo](ctx, r.http, r.http.baseURL+"/orgs/"+group+"/repos?per_page=100")
	if err != nil {
		return nil, err
	}
	return toProjects(repos, r.toProject), nil
}

// GetOwnProjects resolves the authenticated user's login via /user, then
// delegates to GetUserProjects.
func (r *githubResolver) GetOwnProjects(ctx context.Context) ([]Project, error) {
	var me githubUser
	if _, err := r.http.getPage(ctx, r.http.baseURL+"/user", &me); err != nil {
		return nil, err
	}
	if me.Login == "" {
		return nil, fmt.Errorf("%w: /user returned no login", ErrUnknownResponse)
	}
	return r.GetUserProjects(ctx, me.Login)
}

func (r *githubResolver) GetAccessibleProjects(ctx context.Context) ([]Project, error) {
	repos, err := getAllPages[githubRepo](ctx, r.http, r.http.baseURL+"/user/repos?per_page=100&affiliation=collaborator,organization_member")
	if err != nil {
		return nil, err
	}
	return toProjects(repos, r.toProject), nil
}

func toProjects[T any](items []T, convert func(T) Project) []Project {
	projects := make([]Project, 0, len(items))
	for _, item := range items {
		projects = append(projects, convert(item))
	}
	return projects
}
