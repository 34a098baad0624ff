package sessiongate

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestContext_UserAccessors(t *testing.T) {
	u := &User{ID: uuid.New(), Roles: []string{"authgate:admin"}}
	ctx := WithUser(context.Background(), u)

	if !IsAuthenticated(ctx) {
		t.Fatal("expected authenticated context")
	}
	if id, ok := UserIDFromContext(ctx); !ok || id != u.ID {
		t.Fatalf("UserIDFromContext = %v, %v", id, ok)
	}
	roles, ok := RolesFromContext(ctx)
	if !ok || len(roles) != 1 || roles[0] != "authgate:admin" {
		t.Fatalf("RolesFromContext = %v, %v", roles, ok)
	}
}

func TestContext_NoUser(t *testing.T) {
	for name, ctx := range map[string]context.Context{
		"empty":    context.Background(),
		"nil user": WithUser(context.Background(), nil),
	} {
		t.Run(name, func(t *testing.T) {
			if IsAuthenticated(ctx) {
				t.Fatal("expected unauthenticated context")
			}
			if roles, ok := RolesFromContext(ctx); ok || roles != nil {
				t.Fatalf("RolesFromContext = %v, %v", roles, ok)
			}
			if id, ok := UserIDFromContext(ctx); ok || id != uuid.Nil {
				t.Fatalf("UserIDFromContext = %v, %v", id, ok)
			}
		})
	}
}
