package services

import (
	"context"
	"encoding/json"
	"shop-api/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupNeverExposesPassword(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	session, err := f.auth.Signup(context.Background(), SignupInput{
		Name: "Ada", Email: " Ada@Example.com ", Password: "secret123", Image: testImage("ada"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.Empty(t, session.User.Password)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, models.RoleUser, session.User.Role)

	raw, err := json.Marshal(session)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "secret123")
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	valid := SignupInput{Name: "Ada", Email: "ada@example.com", Password: "secret123", Image: testImage("ada")}

	tests := []struct {
		name   string
		mutate func(*SignupInput)
	}{
		{"missing name", func(in *SignupInput) { in.Name = " " }},
		{"bad email", func(in *SignupInput) { in.Email = "not-an-email" }},
		{"short password", func(in *SignupInput) { in.Password = "123" }},
		{"missing image url", func(in *SignupInput) { in.Image.URL = "" }},
		{"missing image id", func(in *SignupInput) { in.Image.PublicID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.auth.Signup(ctx, in)
			assert.True(t, IsKind(err, KindValidation), "got %v", err)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.signup(t, "Ada", "ada@example.com")

	_, err := f.auth.Signup(context.Background(), SignupInput{
		Name: "Other", Email: "ADA@example.com", Password: "secret123", Image: testImage("x"),
	})
	assert.True(t, IsKind(err, KindConflict))
}

func TestLoginErrorsAreIdentical(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	f.signup(t, "Ada", "ada@example.com")
	ctx := context.Background()

	_, unknown := f.auth.Login(ctx, "nobody@example.com", "secret123")
	_, wrong := f.auth.Login(ctx, "ada@example.com", "wrong-password")

	require.Error(t, unknown)
	require.Error(t, wrong)
	assert.True(t, IsKind(unknown, KindUnauthenticated))
	assert.Equal(t, unknown.Error(), wrong.Error())
	assert.Equal(t, "Invalid email or password", wrong.Error())

	session, err := f.auth.Login(ctx, "ADA@example.com", "secret123")
	require.NoError(t, err)
	assert.Empty(t, session.User.Password)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	session, err := f.auth.Signup(ctx, SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "secret123", Image: testImage("ada"),
	})
	require.NoError(t, err)

	identity, err := f.auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, identity.UserID)
	assert.False(t, identity.IsAdmin())

	// Role changes apply to tokens already issued.
	_, err = f.stores.Users.UpdateRole(ctx, session.User.ID, models.RoleAdmin)
	require.NoError(t, err)
	identity, err = f.auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())

	_, err = f.auth.Authenticate(ctx, "")
	assert.True(t, IsKind(err, KindUnauthenticated))
	_, err = f.auth.Authenticate(ctx, session.Token+"x")
	assert.True(t, IsKind(err, KindUnauthenticated))

	require.NoError(t, f.stores.Users.Delete(ctx, session.User.ID))
	identity, err = f.auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, identity.UserID)
	assert.Equal(t, models.RoleUser, identity.Role, "role comes from the token")

	_, err = f.auth.GetProfile(ctx, identity.UserID)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestGetProfileOfDeletedUser(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	id := f.signup(t, "Ada", "ada@example.com")

	profile, err := f.auth.GetProfile(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	assert.NotNil(t, profile.Orders)

	require.NoError(t, f.stores.Users.Delete(ctx, id.UserID))
	_, err = f.auth.GetProfile(ctx, id.UserID)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	ctx := context.Background()
	ada := f.signup(t, "Ada", "ada@example.com")
	f.signup(t, "Bob", "bob@example.com")

	updated, err := f.auth.UpdateProfile(ctx, ada.UserID, models.ProfileUpdate{Address: "2 Side St"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)
	assert.Equal(t, "2 Side St", updated.Address)
	assert.Equal(t, "avatar-Ada", updated.Image.PublicID)
	assert.Empty(t, f.images.deleted)

	newImage := testImage("avatar-2")
	updated, err = f.auth.UpdateProfile(ctx, ada.UserID, models.ProfileUpdate{Image: &newImage})
	require.NoError(t, err)
	assert.Equal(t, newImage, updated.Image)
	assert.Equal(t, []string{"avatar-Ada"}, f.images.deleted)
	assert.Equal(t, models.RoleUser, updated.Role)

	_, err = f.auth.UpdateProfile(ctx, ada.UserID, models.ProfileUpdate{Email: "bob@example.com"})
	assert.True(t, IsKind(err, KindConflict))

	_, err = f.auth.UpdateProfile(ctx, ada.UserID, models.ProfileUpdate{Image: &models.Image{PublicID: "x"}})
	assert.True(t, IsKind(err, KindValidation))

	// The password still works after profile edits.
	_, err = f.auth.Login(ctx, "ada@example.com", "secret123")
	assert.NoError(t, err)
}
