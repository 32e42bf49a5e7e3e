package password

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"medsync/packages/response"
	"medsync/services/medsync/internal/csrf"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/testutils"
	"medsync/services/medsync/internal/user"
	"medsync/services/medsync/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	to    []string
	codes []string
	err   error
}

func (m *fakeMailer) SendResetPasswordCode(to, c string, _ int) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.codes = append(m.codes, c)
	return nil
}

type revoker struct{ ended []string }

func (r *revoker) DestroyUser(_ context.Context, userID string) (int, error) {
	r.ended = append(r.ended, userID)
	return 1, nil
}

type fixture struct {
	db     *gorm.DB
	mailer *fakeMailer
	rv     *revoker
	svc    *PasswordService
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		db:     testutils.SetupTestDB(t),
		mailer: &fakeMailer{},
		rv:     &revoker{},
		now:    time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC),
	}
	f.svc = NewPasswordService(user.NewUserRepository(f.db), f.mailer, f.rv, 0)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestForgotAndReset(t *testing.T) {
	f := newFixture(t)
	u := testutils.CreateTestUser(f.db, testutils.WithEmail("alice@example.com"))
	sess := session.New()

	require.Nil(t, f.svc.Forgot(context.Background(), sess, ForgotForm{Email: " Alice@Example.com "}))
	require.Len(t, f.mailer.codes, 1)
	assert.Equal(t, "alice@example.com", f.mailer.to[0])

	f.now = f.now.Add(5 * time.Minute)
	err := f.svc.Reset(context.Background(), sess, ResetForm{
		OTP: f.mailer.codes[0], Password: "NewSecret9", ConfirmPassword: "NewSecret9",
	})
	require.Nil(t, err)

	stored, gerr := user.NewUserRepository(f.db).GetByID(context.Background(), u.ID)
	require.NoError(t, gerr)
	assert.True(t, user.CheckPassword(stored.PasswordHash, "NewSecret9"))
	assert.Equal(t, []string{itoa(u.ID)}, f.rv.ended)

	_, ok := Pending(sess)
	assert.False(t, ok)
}

func TestForgot_NoEnumeration(t *testing.T) {
	f := newFixture(t)
	testutils.CreateTestUser(f.db, testutils.WithEmail("gone@example.com"), testutils.WithInactive())

	for _, email := range []string{"nobody@example.com", "gone@example.com"} {
		t.Run(email, func(t *testing.T) {
			sess := session.New()
			require.Nil(t, f.svc.Forgot(context.Background(), sess, ForgotForm{Email: email}))

			pending, ok := Pending(sess)
			require.True(t, ok, "a pending entry exists either way")
			assert.Zero(t, pending.UserID)

			err := f.svc.Reset(context.Background(), sess, ResetForm{
				OTP: pending.Code, Password: "NewSecret9", ConfirmPassword: "NewSecret9",
			})
			require.NotNil(t, err)
			assert.Equal(t, response.InvalidParameter, err.Code)
		})
	}
	assert.Empty(t, f.mailer.codes)
}

func TestForgot_InvalidEmail(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Forgot(context.Background(), session.New(), ForgotForm{Email: "not-an-email"})
	require.NotNil(t, err)
	assert.Equal(t, response.InvalidParameter, err.Code)
}

func TestForgot_MailFailureLooksTheSame(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")
	testutils.CreateTestUser(f.db, testutils.WithEmail("alice@example.com"))

	assert.Nil(t, f.svc.Forgot(context.Background(), session.New(), ForgotForm{Email: "alice@example.com"}))
}

func TestReset_Errors(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		form    func(code string) ResetForm
		want    response.ResponseCode
		cleared bool
	}{
		{
			name:    "expired",
			elapsed: 601 * time.Second,
			form: func(c string) ResetForm {
				return ResetForm{OTP: c, Password: "NewSecret9", ConfirmPassword: "NewSecret9"}
			},
			want:    response.OtpExpired,
			cleared: true,
		},
		{
			name: "wrong code",
			form: func(c string) ResetForm {
				wrong := "000000"
				if c == wrong {
					wrong = "999999"
				}
				return ResetForm{OTP: wrong, Password: "NewSecret9", ConfirmPassword: "NewSecret9"}
			},
			want: response.InvalidParameter,
		},
		{
			name: "confirmation differs",
			form: func(c string) ResetForm {
				return ResetForm{OTP: c, Password: "NewSecret9", ConfirmPassword: "NewSecret8"}
			},
			want: response.InvalidParameter,
		},
		{
			name: "weak password",
			form: func(c string) ResetForm { return ResetForm{OTP: c, Password: "weakpass", ConfirmPassword: "weakpass"} },
			want: response.InvalidParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			testutils.CreateTestUser(f.db, testutils.WithEmail("alice@example.com"))
			sess := session.New()
			require.Nil(t, f.svc.Forgot(context.Background(), sess, ForgotForm{Email: "alice@example.com"}))

			f.now = f.now.Add(tt.elapsed)
			err := f.svc.Reset(context.Background(), sess, tt.form(f.mailer.codes[0]))
			require.NotNil(t, err)
			assert.Equal(t, tt.want, err.Code)

			_, ok := Pending(sess)
			assert.Equal(t, !tt.cleared, ok)
			assert.Empty(t, f.rv.ended)
		})
	}
}

func TestReset_WithoutPending(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Reset(context.Background(), session.New(), ResetForm{OTP: "123456"})
	require.NotNil(t, err)
	assert.Equal(t, response.SessionExpired, err.Code)
}

func TestPasswordHTTP(t *testing.T) {
	f := newFixture(t)
	testutils.CreateTestUser(f.db, testutils.WithEmail("alice@example.com"))

	gin.SetMode(gin.TestMode)
	manager := session.NewManager(session.NewMemoryStore(), session.Options{})
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(manager.Middleware(), csrf.Middleware())
	RegisterRoutes(r.Group(""), f.svc, manager)
	b := testutils.NewBrowser(t, r)

	w := b.Get("/password/reset")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/password/forgot", w.Header().Get("Location"))

	b.Get("/password/forgot")
	w = b.PostForm("/password/forgot", url.Values{"email": {"alice@example.com"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/password/reset", w.Header().Get("Location"))

	w = b.Get("/password/reset")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a reset code is on its way")

	w = b.PostForm("/password/reset", url.Values{
		"otp":              {f.mailer.codes[0]},
		"password":         {"NewSecret9"},
		"confirm_password": {"NewSecret9"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func itoa(n int) string { return strconv.Itoa(n) }
