package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_HashesAndNormalizesEmail(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	c, err := svc.Register(context.Background(), SignUp{
		Email: "  Asha@Example.com ", Password: "secret123", FullName: " Asha Rao ", Phone: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", c.Email)
	assert.Equal(t, "Asha Rao", c.FullName)
	assert.NotEqual(t, "secret123", c.PasswordHash)
	assert.Contains(t, c.PasswordHash, "$2")
}

func TestRegister_Rejections(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	ctx := context.Background()

	_, err := svc.Register(ctx, SignUp{Email: "not-an-email", Password: "short", Phone: "12"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")
	assert.Contains(t, ve.Fields, "fullName")
	assert.Contains(t, ve.Fields, "phone")

	_, err = svc.Register(ctx, SignUp{Email: "a@b.co", Password: "secret123", FullName: "A"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, SignUp{Email: "A@B.co", Password: "secret123", FullName: "B"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	ctx := context.Background()
	_, err := svc.Register(ctx, SignUp{Email: "a@b.co", Password: "secret123", FullName: "A"})
	require.NoError(t, err)

	c, err := svc.Authenticate(ctx, "a@b.co", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", c.Email)

	_, err = svc.Authenticate(ctx, "a@b.co", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@b.co", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_Partial(t *testing.T) {
	repo := NewInMemoryRepository([]Customer{{ID: 3, Email: "m@x.in", FullName: "Meera", Phone: "9000000000"}})
	svc := NewService(repo)
	ctx := context.Background()

	name := "Meera K"
	c, err := svc.UpdateProfile(ctx, 3, ProfileUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Meera K", c.FullName)
	assert.Equal(t, "9000000000", c.Phone)

	empty := ""
	c, err = svc.UpdateProfile(ctx, 3, ProfileUpdate{Phone: &empty})
	require.NoError(t, err)
	assert.Empty(t, c.Phone)

	bad := "123"
	_, err = svc.UpdateProfile(ctx, 3, ProfileUpdate{Phone: &bad})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.UpdateProfile(ctx, 99, ProfileUpdate{FullName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}
