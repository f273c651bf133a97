package auth

import (
	"context"

	"catalog-api/internal/model"
)

// View is the visibility state of a request.
type View int

const (
	// PublicView is the state of any request without a verified bearer token.
	PublicView View = iota
	// AdminView is entered only when a bearer token verifies.
	AdminView
)

func (v View) String() string {
	if v == AdminView {
		return "admin"
	}
	return "public"
}

// ShowsHidden reports whether a listing should include inactive and
// unavailable products. Hidden products are shown only when an admin asks
// for them explicitly.
func (v View) ShowsHidden(requested bool) bool {
	return v == AdminView && requested
}

type contextKey string

const identityContextKey contextKey = "auth_identity"

// WithIdentity returns a copy of ctx carrying a verified identity.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext returns the verified identity stored in ctx, if any.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

// ViewFromContext derives the visibility state of the request in ctx.
func ViewFromContext(ctx context.Context) View {
	if _, ok := IdentityFromContext(ctx); ok {
		return AdminView
	}
	return PublicView
}
