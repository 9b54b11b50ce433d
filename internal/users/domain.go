// Package users manages staff accounts for the human resources team.
package users

// Account is a portal staff account.
type Account struct {
	FullName             string `json:"fullName"`
	IdentificationNumber string `json:"identificationNumber"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	BirthDate            string `json:"birthDate"`
	Address              string `json:"address"`
	Role                 string `json:"role"`
	Username             string `json:"username"`
	Password             string `json:"password,omitempty"`
}
