package httpserver

type RegisterForm struct {
	Username        string `form:"username"         validate:"required,min=4,max=150"`
	Password        string `form:"password"         validate:"required,min=6,max=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

var registerMessages = map[string]string{
	"username.required":         "Informe um nome de usuário.",
	"username.min":              "O nome de usuário deve ter entre 4 e 150 caracteres.",
	"username.max":              "O nome de usuário deve ter entre 4 e 150 caracteres.",
	"password.required":         "Informe uma senha.",
	"password.min":              "A senha deve ter pelo menos 6 caracteres.",
	"password.max":              "A senha deve ter no máximo 72 caracteres.",
	"confirm_password.required": "Confirme a senha.",
	"confirm_password.eqfield":  "As senhas devem ser iguais.",
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

var loginMessages = map[string]string{
	"username.required": "Informe seu nome de usuário.",
	"password.required": "Informe sua senha.",
}

type ProductForm struct {
	Name        string `form:"name"        validate:"required,max=100"`
	Description string `form:"description"`
	Price       string `form:"price"       validate:"required"`
}

var productMessages = map[string]string{
	"name.required":  "Informe o nome do produto.",
	"name.max":       "O nome deve ter no máximo 100 caracteres.",
	"price.required": "Informe o preço.",
}

func (f ProductForm) values() map[string]string {
	return map[string]string{"name": f.Name, "description": f.Description, "price": f.Price}
}
