package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength - предел bcrypt в байтах; длиннее GenerateFromPassword не принимает.
const MaxPasswordLength = 72

// dummyHash сравнивается с паролем, когда пользователь не найден,
// чтобы время ответа не зависело от существования логина.
var dummyHash = sync.OnceValue(func() []byte {
	hashed, err := bcrypt.GenerateFromPassword([]byte("bms-missing-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hashed
})

// HashPassword возвращает bcrypt-хэш пароля со стоимостью по умолчанию.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, bcrypt.DefaultCost)
}

// HashPasswordCost возвращает bcrypt-хэш пароля с заданной стоимостью.
func HashPasswordCost(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword сравнивает пароль с хэшем. Пустой хэш означает
// отсутствующего пользователя: сравнение всё равно выполняется.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
