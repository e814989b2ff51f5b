package dto

import "strings"

// SignupForm is posted by /auth/signup.
type SignupForm struct {
	Username  string `form:"username" binding:"required,notblank,min=3,max=25"`
	Password1 string `form:"password1" binding:"required,eqfield=Password2"`
	Password2 string `form:"password2" binding:"required"`
	Email     string `form:"email" binding:"required,email,max=120"`
}

// Normalize trims identifying fields. Passwords are kept verbatim.
func (f *SignupForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
}

// LoginForm is posted by /auth/login.
type LoginForm struct {
	Username string `form:"username" binding:"required,notblank,min=3,max=25"`
	Password string `form:"password" binding:"required"`
}

func (f *LoginForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
}
