package auth

// Source is the pluggable authentication boundary wireserver's auth
// strategy talks to, modeled on the `AuthSource` trait
// original_source/datafusion-postgres/examples/custom_auth_server.rs and
// secure_auth_server.rs show: a caller who wants to authenticate against
// something other than the in-memory user table (an external IdP, a
// database-backed user store) implements Source and hands it to
// wireserver instead of an *auth.Manager, without wireserver itself
// needing to change.
//
// Unlike the Rust trait, Source carries no separate "fetch the stored
// hash" method — Authenticate alone is psql-wire's entire auth contract
// (wire.ClearTextPassword(fn) takes exactly this shape), so a derived
// second method would have no caller.
type Source interface {
	Authenticate(username, password string) bool
}

// PermissionChecker is the optional capability a Source may implement to
// answer spec.md §4.5's check_permission calls. wireserver type-asserts
// its AuthSource against this interface the same way it type-asserts an
// engine.Engine against engine.CatalogRegistrar — a Source that doesn't
// implement it (a bespoke external-IdP adapter with no role model of its
// own) causes wireserver to skip the permission check entirely rather
// than fail closed, the same permissive posture a nil AuthSource already
// takes for authentication.
type PermissionChecker interface {
	CheckPermission(username string, perm Permission, resource Resource) bool
}

// ManagerSource adapts a *Manager to Source. Manager already satisfies
// Source's method set directly (Authenticate has the right signature),
// so this type exists only to give callers an explicit name for "the
// default, in-memory Source" when they construct a wireserver without
// wanting to think about the interface at all.
type ManagerSource struct {
	*Manager
}

// NewManagerSource wraps m as a Source.
func NewManagerSource(m *Manager) Source {
	return ManagerSource{Manager: m}
}
