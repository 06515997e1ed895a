package dto

type RegisterDTO struct {
	Name            string `json:"name"             validate:"required,min=5,max=50"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=5,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserView is the public projection of a user. The password hash never
// leaves the service layer.
type UserView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type WalletView struct {
	ID      string `json:"id"`
	Balance string `json:"balance"`
}
