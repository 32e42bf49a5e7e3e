package register

import (
	"fmt"
	"net/http"

	"medsync/packages/response"
	"medsync/services/medsync/internal/code"
	"medsync/services/medsync/internal/dto"
	userModel "medsync/services/medsync/internal/model/user"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RegisterHandler struct {
	service *RegisterService
}

func (h *RegisterHandler) form(c *gin.Context) {
	web.Render(c, http.StatusOK, "register.html", gin.H{
		"Title":   "Register",
		"Form":    StartForm{},
		"Genders": userModel.Genders,
	})
}

// start godoc
// @Summary      Start a registration
// @Description  Validates the form, stores it in the session and mails a 6-digit code
// @Tags         register
// @Accept       multipart/form-data
// @Produce      html
// @Param        name              formData  string  true   "Full name"
// @Param        username          formData  string  true   "Username"
// @Param        email             formData  string  true   "Email"
// @Param        phone             formData  string  false  "Phone"
// @Param        date_of_birth     formData  string  true   "YYYY-MM-DD"
// @Param        gender            formData  string  true   "male, female or other"
// @Param        password          formData  string  true   "Password"
// @Param        confirm_password  formData  string  true   "Password again"
// @Param        profile_picture   formData  file    false  "JPEG, PNG, GIF or WebP up to 2 MB"
// @Param        csrf_token        formData  string  true   "CSRF token"
// @Success      303
// @Router       /register [post]
func (h *RegisterHandler) start(c *gin.Context) {
	var form StartForm
	if err := c.ShouldBind(&form); err != nil {
		web.Fail(c, "/register", response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("Please check the form and try again."),
			response.WithError(err),
		))
		return
	}

	// a missing or empty file part means no picture
	picture, err := c.FormFile("profile_picture")
	if err != nil {
		picture = nil
	}

	sess := session.FromContext(c)
	if bizErr := h.service.Start(c.Request.Context(), sess, form, picture); bizErr != nil {
		h.rejectForm(c, form, bizErr)
		return
	}

	web.Flash(c, "success", "We sent a verification code to "+form.Email+".")
	web.Redirect(c, "/register/verify")
}

// rejectForm re-renders the form with what the visitor typed, minus the
// passwords.
func (h *RegisterHandler) rejectForm(c *gin.Context, form StartForm, err *response.BusinessError) {
	if err.Err != nil {
		logrus.WithError(err.Err).WithField("code", err.Code).Warn(err.Msg)
	}
	form.Password = ""
	form.ConfirmPassword = ""
	web.Flash(c, "error", err.Msg)
	web.Render(c, dto.StatusFor(err.Code), "register.html", gin.H{
		"Title":   "Register",
		"Form":    form,
		"Genders": userModel.Genders,
	})
}

func (h *RegisterHandler) verifyForm(c *gin.Context) {
	pending, ok := Pending(session.FromContext(c))
	if !ok {
		web.Flash(c, "error", sessionExpired().Msg)
		web.Redirect(c, "/register")
		return
	}
	web.Render(c, http.StatusOK, "verify.html", gin.H{
		"Title":         "Verify email",
		"Email":         pending.Email,
		"ExpireMinutes": code.ExpireMinutes(h.service.otpTTL),
	})
}

// verify godoc
// @Summary      Verify the registration code
// @Description  Creates the account when the code matches and is at most 10 minutes old
// @Tags         register
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        otp         formData  string  true  "6-digit code"
// @Param        csrf_token  formData  string  true  "CSRF token"
// @Success      303
// @Router       /register/verify [post]
func (h *RegisterHandler) verify(c *gin.Context) {
	var form VerifyForm
	if err := c.ShouldBind(&form); err != nil {
		web.Fail(c, "/register/verify", response.NewBusinessError(
			response.WithErrorCode(response.ParseError),
			response.WithErrorMessage("Please enter the code from the email."),
			response.WithError(err),
		))
		return
	}

	result, bizErr := h.service.Verify(c.Request.Context(), session.FromContext(c), form.OTP)
	if bizErr != nil {
		web.Fail(c, verifyFailurePath(bizErr.Code), bizErr)
		return
	}

	web.Flash(c, "success", fmt.Sprintf("Registration complete. Your ID is %s. You can sign in now.", result.DisplayID))
	web.Redirect(c, "/login")
}

// verifyFailurePath keeps the visitor on the code page only while the
// pending registration is still usable.
func verifyFailurePath(code response.ResponseCode) string {
	switch code {
	case response.InvalidParameter, response.Persistence:
		return "/register/verify"
	default:
		return "/register"
	}
}

// resend godoc
// @Summary      Mail a new registration code
// @Tags         register
// @Produce      html
// @Param        csrf_token  formData  string  true  "CSRF token"
// @Success      303
// @Router       /register/resend [post]
func (h *RegisterHandler) resend(c *gin.Context) {
	bizErr := h.service.Resend(c.Request.Context(), session.FromContext(c))
	switch {
	case bizErr == nil:
		web.Flash(c, "success", "A new code is on its way.")
		web.Redirect(c, "/register/verify")
	case bizErr.Code == response.SessionExpired:
		web.Fail(c, "/register", bizErr)
	default:
		web.Fail(c, "/register/verify", bizErr)
	}
}
