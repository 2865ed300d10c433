package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/utilitywarehouse/git-workspace/config"
	"github.com/utilitywarehouse/git-workspace/repo"
)

func TestGitHubUserProjectsPaginates(t *testing.T) {
	var gotAuth, gotAccept string

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/users/alice/repos", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Link", fmt.Sprintf(`<%s/page2>; rel="next"`, srv.URL))
		fmt.Fprint(w, `[{"name":"one","private":false,"ssh_url":"git@example.com:alice/one.git","clone_url":"https://example.com/alice/one.git","owner":{"login":"alice"}}]`)
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"two","private":true,"ssh_url":"git@example.com:alice/two.git","clone_url":"https://example.com/alice/two.git","owner":{"login":"alice"}}]`)
	})

	r := newGitHubResolver(srv.URL, "sekrit")
	projects, err := r.GetUserProjects(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserProjects: %v", err)
	}

	if gotAuth != "token sekrit" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "token sekrit")
	}
	if gotAccept != "application/vnd.github+json" {
		t.Errorf("Accept = %q, want %q", gotAccept, "application/vnd.github+json")
	}

	want := []Project{
		{Name: "one", Namespace: "alice", SSHURLToRepo: "git@example.com:alice/one.git", HTTPURLToRepo: "https://example.com/alice/one.git"},
		{Name: "two", Namespace: "alice", Private: true, SSHURLToRepo: "git@example.com:alice/two.git", HTTPURLToRepo: "https://example.com/alice/two.git"},
	}
	if diff := cmp.Diff(want, projects); diff != "" {
		t.Errorf("projects mismatch (-want +got):\n%s", diff)
	}
}

func TestGitHubOwnProjectsResolvesLogin(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"bob"}`)
	})
	mux.HandleFunc("/users/bob/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"mine","private":false,"owner":{"login":"bob"}}]`)
	})

	r := newGitHubResolver(srv.URL, "tok")
	projects, err := r.GetOwnProjects(context.Background())
	if err != nil {
		t.Fatalf("GetOwnProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "mine" || projects[0].Namespace != "bob" {
		t.Errorf("projects = %+v, want one project mine owned by bob", projects)
	}
}

func TestGitLabUsesBearerScheme(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/groups/infra/projects", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `[{"name":"gw","path_with_namespace":"infra/gw","visibility":"private","ssh_url_to_repo":"git@example.com:infra/gw.git","http_url_to_repo":"https://example.com/infra/gw.git","namespace":{"full_path":"infra"}}]`)
	})

	r := newGitLabResolver(srv.URL, "sekrit")
	projects, err := r.GetGroupProjects(context.Background(), "infra")
	if err != nil {
		t.Fatalf("GetGroupProjects: %v", err)
	}
	if gotAuth != "bearer sekrit" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "bearer sekrit")
	}
	if len(projects) != 1 || !projects[0].Private || projects[0].Namespace != "infra" {
		t.Errorf("projects = %+v, want one private project in namespace infra", projects)
	}
}

func TestProviderHTTPFailureFailsWholeOperation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	r := newGitHubResolver(srv.URL, "tok")
	if _, err := r.GetUserProjects(context.Background(), "alice"); !errors.Is(err, ErrHTTPFailure) {
		t.Fatalf("GetUserProjects err = %v, want ErrHTTPFailure", err)
	}
}

// fakeResolver records which sources Resolve queried, in order.
type fakeResolver struct {
	calls      []string
	own        []Project
	accessible []Project
	users      map[string][]Project
	groups     map[string][]Project
}

func (f *fakeResolver) GetUserProjects(ctx context.Context, user string) ([]Project, error) {
	f.calls = append(f.calls, "user:"+user)
	return f.users[user], nil
}

func (f *fakeResolver) GetGroupProjects(ctx context.Context, group string) ([]Project, error) {
	f.calls = append(f.calls, "group:"+group)
	return f.groups[group], nil
}

func (f *fakeResolver) GetOwnProjects(ctx context.Context) ([]Project, error) {
	f.calls = append(f.calls, "own")
	return f.own, nil
}

func (f *fakeResolver) GetAccessibleProjects(ctx context.Context) ([]Project, error) {
	f.calls = append(f.calls, "accessible")
	return f.accessible, nil
}

func TestResolveComposesSourcesInOrderWithFirstOccurrenceDedup(t *testing.T) {
	shared := Project{Name: "shared", Namespace: "team", Private: true}
	f := &fakeResolver{
		own:        []Project{shared},
		accessible: []Project{{Name: "shared", Namespace: "team"}, {Name: "other", Namespace: "team"}},
		users:      map[string][]Project{"alice": {{Name: "solo", Namespace: "alice"}}},
		groups:     map[string][]Project{"infra": {{Name: "shared", Namespace: "team"}}},
	}

	got, err := Resolve(context.Background(), f, Filters{
		Owner:  true,
		Access: true,
		Users:  []string{"alice"},
		Groups: []string{"infra"},
	}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	wantCalls := []string{"own", "accessible", "user:alice", "group:infra"}
	if diff := cmp.Diff(wantCalls, f.calls); diff != "" {
		t.Errorf("source order mismatch (-want +got):\n%s", diff)
	}

	want := map[string][]Project{
		"team":  {shared, {Name: "other", Namespace: "team"}},
		"alice": {{Name: "solo", Namespace: "alice"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolution mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveEmptyFiltersYieldsEmptyResult(t *testing.T) {
	f := &fakeResolver{}
	got, err := Resolve(context.Background(), f, Filters{}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Resolve with empty filters = %v, want empty", got)
	}
	if len(f.calls) != 0 {
		t.Errorf("Resolve with empty filters queried %v, want no calls", f.calls)
	}
}

func TestToReposURLSelection(t *testing.T) {
	byNamespace := map[string][]Project{
		"team": {
			{Name: "public", Namespace: "team", SSHURLToRepo: "git@example.com:team/public.git", HTTPURLToRepo: "https://example.com/team/public.git"},
			{Name: "secret", Namespace: "team", Private: true, SSHURLToRepo: "git@example.com:team/secret.git", HTTPURLToRepo: "https://example.com/team/secret.git"},
		},
	}

	repos := ToRepos(byNamespace, config.ProviderSpecConfig{})
	byName := map[repo.RepoName]repo.Repo{}
	for _, r := range repos {
		byName[r.Name] = r
	}

	pub, ok := byName["public"]
	if !ok || len(pub.Remotes) != 1 {
		t.Fatalf("missing public repo in %+v", repos)
	}
	if pub.Remotes[0].Name != "origin" {
		t.Errorf("remote name = %q, want origin", pub.Remotes[0].Name)
	}
	if pub.Remotes[0].Type != repo.Https {
		t.Errorf("public repo remote type = %v, want Https", pub.Remotes[0].Type)
	}
	if pub.Namespace != "team" {
		t.Errorf("namespace = %q, want team", pub.Namespace)
	}

	sec := byName["secret"]
	if len(sec.Remotes) != 1 || sec.Remotes[0].Type != repo.Ssh {
		t.Errorf("private repo remotes = %+v, want one Ssh remote", sec.Remotes)
	}

	forced := ToRepos(byNamespace, config.ProviderSpecConfig{ForceSSH: true, RemoteName: "upstream", Worktree: true})
	for _, r := range forced {
		if r.Remotes[0].Type != repo.Ssh {
			t.Errorf("%s: force_ssh remote type = %v, want Ssh", r.Name, r.Remotes[0].Type)
		}
		if r.Remotes[0].Name != "upstream" {
			t.Errorf("%s: remote name = %q, want upstream", r.Name, r.Remotes[0].Name)
		}
		if r.WorktreeSetup != repo.Worktree {
			t.Errorf("%s: worktree setup not taken from the provider config", r.Name)
		}
	}
}

func TestKindFromString(t *testing.T) {
	if k, err := KindFromString("github"); err != nil || k != GitHub {
		t.Errorf("KindFromString(github) = %v, %v", k, err)
	}
	if k, err := KindFromString("gitlab"); err != nil || k != GitLab {
		t.Errorf("KindFromString(gitlab) = %v, %v", k, err)
	}
	if _, err := KindFromString("sourcehut"); err == nil {
		t.Error("KindFromString(sourcehut) succeeded, want error")
	}
}
