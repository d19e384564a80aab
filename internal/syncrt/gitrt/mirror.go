package gitrt

import "context"

// Mirror is the external git-mirror collaborator named in the external
// interfaces contract: "sync(repo, branch, subpaths, strip_prefix) →
// directory of documents | <SyncFailed>". gitrt only calls this contract
// and reacts to its outcome; the sparse-checkout mechanics it wraps are
// considered an external concern, not reimplemented inline in the scheduler.
type Mirror interface {
	Sync(ctx context.Context, spec RepoSpec) (checkoutDir string, err error)
}

// RepoSpec names everything gitrt needs from a tenant's git source config.
type RepoSpec struct {
	RepoURL     string
	Branch      string
	Subpaths    []string
	StripPrefix string
	AuthToken   string
}
