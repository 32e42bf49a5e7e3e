package login

// LoginForm is posted by the sign-in page.
type LoginForm struct {
	Login    string `form:"login" json:"login" example:"alice"` // username or email
	Password string `form:"password" json:"password" example:"Wonder1and"`
}
