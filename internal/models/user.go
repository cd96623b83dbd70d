package models

import "time"

// Role - роль пользователя
type Role string

const (
	AdminRole          Role = "admin"
	FinanceManagerRole Role = "finance_manager"
	SeniorBidderRole   Role = "senior_bidder"
	BidderRole         Role = "bidder"
)

// User представляет модель пользователя. Хэш пароля не сериализуется.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session - данные аутентифицированного пользователя, без пароля.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// Session строит сессию из пользователя.
func (u User) Session() Session {
	return Session{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Name:     u.Name,
	}
}

// LoginRequest - тело запроса на вход.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse - ответ на успешный вход.
type LoginResponse struct {
	Success bool    `json:"success"`
	User    Session `json:"user"`
	Token   string  `json:"token"`
	Message string  `json:"message"`
}
