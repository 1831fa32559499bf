package auth

import "testing"

func TestNewManagerSeedsDefaults(t *testing.T) {
	m := NewManager(DefaultConfig())
	if _, ok := m.GetUser("postgres"); !ok {
		t.Fatal("expected default postgres user")
	}
	for _, role := range []string{"postgres", "readonly", "readwrite", "dbadmin"} {
		if _, ok := m.GetRole(role); !ok {
			t.Errorf("expected predefined role %q", role)
		}
	}
}

func TestAuthenticatePostgresEmptyPassword(t *testing.T) {
	m := NewManager(DefaultConfig())
	if !m.Authenticate("postgres", "") {
		t.Error("expected passwordless postgres login to succeed by default")
	}
	if m.Authenticate("nonexistent", "anything") {
		t.Error("expected unknown user to be rejected")
	}
}

func TestAuthenticateRequirePasswordsRejectsEmpty(t *testing.T) {
	m := NewManager(Config{RequirePasswords: true, AllowEmptyPasswords: false})
	if m.Authenticate("postgres", "") {
		t.Error("expected empty password to be rejected once passwords are required")
	}
	if m.Authenticate("postgres", "anything") {
		t.Error("expected mismatched password to be rejected when postgres has no hash set")
	}

	if err := m.SetUserPassword("postgres", "secret"); err != nil {
		t.Fatalf("SetUserPassword: %v", err)
	}
	if !m.Authenticate("postgres", "secret") {
		t.Error("expected correct password to authenticate")
	}
	if m.Authenticate("postgres", "wrong") {
		t.Error("expected incorrect password to be rejected")
	}
}

func TestAuthenticateDisallowEmptyPasswords(t *testing.T) {
	m := NewManager(Config{RequirePasswords: false, AllowEmptyPasswords: false})
	if m.Authenticate("postgres", "anything") {
		t.Error("expected a non-empty password to be rejected for a user with no stored hash when AllowEmptyPasswords is false")
	}
	if !m.Authenticate("postgres", "") {
		t.Error("expected an empty password to be accepted for a user with no stored hash")
	}
}

func TestCheckPermissionSuperuser(t *testing.T) {
	m := NewManager(DefaultConfig())
	if !m.CheckPermission("postgres", PermDrop, Resource{Kind: ResourceTable, Name: "anything"}) {
		t.Error("expected superuser to pass every permission check")
	}
}

func TestCheckPermissionRoleGrant(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.AddUser(User{Username: "alice", Roles: []string{"readonly"}, CanLogin: true})

	if !m.CheckPermission("alice", PermSelect, Resource{Kind: ResourceAll}) {
		t.Error("expected readonly role to grant SELECT")
	}
	if m.CheckPermission("alice", PermInsert, Resource{Kind: ResourceAll}) {
		t.Error("expected readonly role to not grant INSERT")
	}
}

func TestCheckPermissionInheritedRole(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.AddRole(Role{Name: "custom"})
	if err := m.AddRoleInheritance("custom", "readwrite"); err != nil {
		t.Fatalf("AddRoleInheritance: %v", err)
	}
	m.AddUser(User{Username: "bob", Roles: []string{"custom"}, CanLogin: true})

	if !m.CheckPermission("bob", PermInsert, Resource{Kind: ResourceAll}) {
		t.Error("expected inherited readwrite role to grant INSERT")
	}
}

func TestCheckPermissionInheritanceCycleTerminates(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.AddRole(Role{Name: "a"})
	m.AddRole(Role{Name: "b"})
	_ = m.AddRoleInheritance("a", "b")
	_ = m.AddRoleInheritance("b", "a")
	m.AddUser(User{Username: "carol", Roles: []string{"a"}, CanLogin: true})

	if m.CheckPermission("carol", PermSelect, Resource{Kind: ResourceAll}) {
		t.Error("expected no grant to be found through a pure inheritance cycle")
	}
}

func TestRevokePermission(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.AddUser(User{Username: "dave", Roles: []string{"readonly"}, CanLogin: true})

	if err := m.RevokePermission("readonly", PermSelect, Resource{Kind: ResourceAll}); err != nil {
		t.Fatalf("RevokePermission: %v", err)
	}
	if m.CheckPermission("dave", PermSelect, Resource{Kind: ResourceAll}) {
		t.Error("expected SELECT grant to be revoked")
	}
}

func TestResourceMatchesSchemaGrant(t *testing.T) {
	granted := Resource{Kind: ResourceSchema, Name: "public"}
	requested := Resource{Kind: ResourceTable, Name: "public.widgets"}
	if !resourceMatches(granted, requested) {
		t.Error("expected schema grant to cover a table qualified with that schema")
	}
}

func TestParsePermission(t *testing.T) {
	p, ok := ParsePermission("select")
	if !ok || p != PermSelect {
		t.Errorf("ParsePermission(select) = %v, %v", p, ok)
	}
	if _, ok := ParsePermission("bogus"); ok {
		t.Error("expected unknown permission name to fail")
	}
}

func TestManagerSourceSatisfiesSource(t *testing.T) {
	m := NewManager(DefaultConfig())
	var src Source = NewManagerSource(m)
	if !src.Authenticate("postgres", "") {
		t.Error("expected ManagerSource to delegate to the wrapped Manager")
	}
}

func TestGrantRevokeUnknownRole(t *testing.T) {
	m := NewManager(DefaultConfig())
	if err := m.GrantPermission("ghost", Grant{Permission: PermSelect}); err == nil {
		t.Error("expected error granting to a nonexistent role")
	}
	if err := m.RevokePermission("ghost", PermSelect, Resource{}); err == nil {
		t.Error("expected error revoking from a nonexistent role")
	}
}
