// Package password encapsula el hashing de contraseñas con bcrypt.
// El hash almacenado es opaco para el resto del sistema: nunca viaja en
// responses ni en tokens.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// cost por encima del default; login es poco frecuente comparado con verify de tokens.
const cost = 12

// Hash devuelve el hash bcrypt del password en claro.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("password: contraseña vacía")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara un password en claro contra el hash almacenado.
func Verify(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
