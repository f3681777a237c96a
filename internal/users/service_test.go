package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	users map[string]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User)}
}

func (r *memoryRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *memoryRepo) Create(ctx context.Context, u User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeMailer struct {
	emails []string
	urls   []string
}

func (m *fakeMailer) EnqueueReceiptEmail(ctx context.Context, email, pdfURL string) error {
	m.emails = append(m.emails, email)
	m.urls = append(m.urls, pdfURL)
	return nil
}

func TestCreateAndUpdateUser(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{
		Names: " Rosa ", Surnames: "Quispe", Email: "rosa@tienda.pe", Username: "rosa", Type: "admin",
	})
	require.NoError(t, err)
	require.Equal(t, "Rosa", u.Names)

	_, err = svc.Create(ctx, UserInput{Names: "Otro", Email: "o@tienda.pe", Username: "rosa"})
	require.ErrorIs(t, err, ErrDuplicateUsername)

	updated, err := svc.Update(ctx, u.ID, UserInput{
		Names: "Rosa", Surnames: "Quispe Mamani", Email: "rosa@tienda.pe", Username: "rosaq",
	})
	require.NoError(t, err)
	require.Equal(t, "rosaq", updated.Username)

	_, err = svc.Update(ctx, "missing", UserInput{Names: "X", Email: "x@y.pe", Username: "x"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendReceiptBuildsHostedPDFURL(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), newMemoryRepo(), mailer)

	err := svc.SendReceipt(context.Background(), "https://back.apisunat.com/", ReceiptInput{
		Email:         "cliente@mail.pe",
		IDSunat:       "doc-123",
		Format:        "A4",
		FileNameSunat: "20123456789-03-B001-00000042",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"cliente@mail.pe"}, mailer.emails)
	require.Equal(t,
		"https://back.apisunat.com/documents/doc-123/getPDF/A4/20123456789-03-B001-00000042.pdf",
		mailer.urls[0])
}

func TestSendReceiptWithoutMailerFails(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), newMemoryRepo(), nil)
	err := svc.SendReceipt(context.Background(), "https://back.apisunat.com", ReceiptInput{
		Email: "a@b.pe", IDSunat: "x", Format: "A4", FileNameSunat: "f",
	})
	require.Error(t, err)
}
