package provider

import (
	"context"
	"net/url"
)

const gitlabDefaultAPIURL = "https://gitlab.com/api/v4"

type gitlabResolver struct {
	http *httpClient
}

func newGitLabResolver(apiURL, token string) *gitlabResolver {
	if apiURL == "" {
		apiURL = gitlabDefaultAPIURL
	}
	return &gitlabResolver{http: newHTTPClient(apiURL, "application/json", "bearer", token)}
}

type gitlabProject struct {
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	Visibility        string `json:"visibility"`
	SSHURLToRepo      string `json:"ssh_url_to_repo"`
	HTTPURLToRepo     string `json:"http_url_to_repo"`
	Namespace         struct {
		FullPath string `json:"full_path"`
	} `json:"namespace"`
}

func (r *gitlabResolver) toProject(g gitlabProject) Project {
	return Project{
		Name:          g.Name,
		Namespace:     g.Namespace.FullPath,
		Private:       g.Visibility != "public",
		SSHURLToRepo:  g.SSHURLToRepo,
		HTTPURLToRepo: g.HTTPURLToRepo,
	}
}

func (r *gitlabResolver) GetUserProjects(ctx context.Context, user string) ([]Project, error) {
	repos, err := getAllPages[gitlabProject](ctx, r.http,
		r.http.baseURL+"/users/"+url.PathEscape(user)+"/projects?per_page=100")
	if err != nil {
		return nil, err
	}
	return toProjects(repos, r.toProject), nil
}

func (r *gitlabResolver) GetGroupProjects(ctx context.Context, group string) ([]Project, error) {
	repos, err := getAllPages[gitlabProject](ctx, r.http,
		r.http.baseURL+"/groups/"+url.PathEscape(group)+"/projects?per_page=100&include_subgroups=true")
	if err != nil {
		return nil, err
	}
	return toProjects(repos, r.toProject), nil
}

// GetOwnProjects uses the distinct "projects?owned=true" owner endpoint,
// unlike the GitHub-style current-user-then-delegate shape.
func (r *gitlabResolver) GetOwnProjects(ctx context.Context) ([]Project, error) {
	repos, err := getAllPages[gitlabProject](ctx, r.http, r.http.baseURL+"/projects?owned=true&per_page=100")
	if err != nil {
		return nil, err
	}
	return toProjects(repos, r.toProject), nil
}

func (r *gitlabResolver) GetAccessibleProjects(ctx context.Context) ([]Project, error) {
	repos, err := getAllPages[gitlabProject](ctx, r.http, r.http.baseURL+"/projects?membership=true&per_page=100")
	if err != nil {
		return nil, err
	}
	return toProjects(repos, r.toProject), nil
}

