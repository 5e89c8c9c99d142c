package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PolicyEvaluator decides, for each proposed operation, one of
// {allow, allow-with-confirmation, deny-with-reason}. It is grounded on the
// teacher's ToolGuard (pkg/goclaw/copilot/tool_guard.go) but generalized
// from access-level tiers to the spec's single autonomy posture.
//
// The held policy is mutable behind a mutex rather than fixed at
// construction: config.Watcher's onChange hook calls UpdatePolicy on every
// config.toml write, and ToolExecutor re-reads Policy() on every tool
// call, so a host-allowlist or autonomy edit is observed on the very next
// turn without a restart.
type PolicyEvaluator struct {
	mu     sync.RWMutex
	policy SecurityPolicy
}

// NewPolicyEvaluator constructs an evaluator over a loaded SecurityPolicy.
// WorkspaceDir is expected to already be canonicalized by the caller.
func NewPolicyEvaluator(policy SecurityPolicy) *PolicyEvaluator {
	return &PolicyEvaluator{policy: policy}
}

// Policy returns the currently active SecurityPolicy.
func (e *PolicyEvaluator) Policy() SecurityPolicy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// UpdatePolicy replaces the active SecurityPolicy, taking effect for every
// tool call starting with the next one evaluated.
func (e *PolicyEvaluator) UpdatePolicy(policy SecurityPolicy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = policy
}

// baseCommand extracts the first whitespace-delimited token of cmd and
// strips any directory prefix, per §4.1 is_command_allowed.
func baseCommand(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return filepath.Base(fields[0])
}

// IsCommandAllowed reports whether cmd's base program name is in the
// allow-list. It is only meaningful in Full mode: in Supervised, user
// confirmation overrides the whitelist; in ReadOnly it is always false.
func (e *PolicyEvaluator) IsCommandAllowed(cmd string) bool {
	policy := e.Policy()
	switch policy.Autonomy {
	case AutonomyReadOnly:
		return false
	case AutonomySupervised:
		// The whitelist is a soft constraint here — confirmation is the
		// actual gate; callers should not rely on this return value alone
		// in Supervised mode.
		_, ok := policy.AllowedCommands[baseCommand(cmd)]
		return ok
	case AutonomyFull:
		_, ok := policy.AllowedCommands[baseCommand(cmd)]
		return ok
	default:
		return false
	}
}

// RequiresConfirmation reports whether the current autonomy level requires
// a user confirmation step before executing a permitted operation.
func (e *PolicyEvaluator) RequiresConfirmation() bool {
	return e.Policy().Autonomy == AutonomySupervised
}

// IsPathAllowed canonicalizes path (resolving symlinks through every
// existing ancestor component, tolerating a nonexistent leaf for writes by
// canonicalizing the deepest existing ancestor and re-appending the tail)
// and reports whether the result is a prefix-descendant of WorkspaceDir and
// outside every entry in BlockedPaths.
func (e *PolicyEvaluator) IsPathAllowed(path string) (bool, string) {
	policy := e.Policy()

	canonical, err := canonicalizePath(path)
	if err != nil {
		return false, "path not resolvable"
	}

	workspace, err := canonicalizePath(policy.WorkspaceDir)
	if err != nil {
		return false, "path not resolvable"
	}

	if !isPrefixDescendant(canonical, workspace) {
		return false, fmt.Sprintf("path %q is outside workspace %q", path, policy.WorkspaceDir)
	}

	for _, blocked := range policy.BlockedPaths {
		blockedCanonical, err := canonicalizePath(blocked)
		if err != nil {
			continue
		}
		if canonical == blockedCanonical || isPrefixDescendant(canonical, blockedCanonical) {
			return false, fmt.Sprintf("path %q is blocked", path)
		}
	}

	return true, ""
}

// canonicalizePath resolves symlinks through every existing ancestor
// component. If the leaf does not exist (a write target), it canonicalizes
// the deepest existing ancestor and re-appends the non-existent tail. Any
// ancestor that cannot be located at all (e.g. root is inaccessible) is a
// hard failure, per §4.1's failure semantics.
func canonicalizePath(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		var err error
		abs, err = filepath.Abs(abs)
		if err != nil {
			return "", err
		}
	}
	abs = filepath.Clean(abs)

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	// Leaf (and possibly more) does not exist: walk up until we find an
	// ancestor that does, canonicalize that, then re-append the tail.
	dir := filepath.Dir(abs)
	tail := []string{filepath.Base(abs)}
	for {
		resolvedDir, err := filepath.EvalSymlinks(dir)
		if err == nil {
			result := resolvedDir
			for i := len(tail) - 1; i >= 0; i-- {
				result = filepath.Join(result, tail[i])
			}
			return result, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root and it still doesn't resolve.
			return "", err
		}
		tail = append(tail, filepath.Base(dir))
		dir = parent
	}
}

// isPrefixDescendant reports whether child is equal to or a path-component
// descendant of parent (not merely a string prefix — "/workspacex" must not
// be considered a descendant of "/workspace").
func isPrefixDescendant(child, parent string) bool {
	if child == parent {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(child, strings.TrimSuffix(parent, sep)+sep)
}
