package repo

import (
	"fmt"
	"regexp"
	"strings"
)

// RemoteType classifies a remote by the transport its URL implies.
type RemoteType int

const (
	Ssh RemoteType = iota
	Https
	File
)

func (t RemoteType) String() string {
	switch t {
	case Ssh:
		return "ssh"
	case Https:
		return "https"
	case File:
		return "file"
	default:
		return "unknown"
	}
}

// Pushable reports whether a remote of this type accepts pushes: Ssh
// and File are pushable, Https is not.
func (t RemoteType) Pushable() bool {
	return t == Ssh || t == File
}

// scpLikeRgx matches the scp-like shorthand user@host:path, classified as
// Ssh when the path ends in ".git".
var scpLikeRgx = regexp.MustCompile(`^[A-Za-z]+@.*\.git$`)

// DetectRemoteType classifies rawURL by its scheme prefix. The returned
// error is one of ErrUnsupportedHTTPRemote, ErrUnsupportedGitRemote or
// ErrUnimplementedProtocol when the URL cannot be classified.
func DetectRemoteType(rawURL string) (RemoteType, error) {
	switch {
	case strings.HasPrefix(rawURL, "ssh://"):
		return Ssh, nil
	case scpLikeRgx.MatchString(rawURL):
		return Ssh, nil
	case strings.HasPrefix(rawURL, "https://"):
		return Https, nil
	case strings.HasPrefix(rawURL, "file://"):
		return File, nil
	case strings.HasPrefix(rawURL, "http://"):
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedHTTPRemote, rawURL)
	case strings.HasPrefix(rawURL, "git://"):
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedGitRemote, rawURL)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnimplementedProtocol, rawURL)
	}
}

// Remote is a named pointer at a remote repository.
type Remote struct {
	Name RemoteName
	URL  RemoteUrl
	Type RemoteType
}

// NewRemote builds a Remote, deriving Type from url by classification.
func NewRemote(name RemoteName, url RemoteUrl) (Remote, error) {
	t, err := DetectRemoteType(string(url))
	if err != nil {
		return Remote{}, err
	}
	return Remote{Name: name, URL: url, Type: t}, nil
}

// Pushable reports whether this remote accepts pushes.
func (r Remote) Pushable() bool { return r.Type.Pushable() }
