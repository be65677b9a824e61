// Package auth define el modelo de identidad autenticada del request:
// roles, authorities y el Principal derivado de un token verificado.
package auth

import "strings"

// Roles conocidos del sistema. El set es abierto (la columna de roles admite
// tags arbitrarios) pero estos dos tienen semántica fija.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AuthorityPrefix se antepone a cada rol al construir las authorities del
// Principal (rol ADMIN => authority ROLE_ADMIN).
const AuthorityPrefix = "ROLE_"

// Principal es la identidad autenticada de un request. Es transitorio:
// se construye por-request a partir de claims verificados, viaja en el
// contexto y muere con el request. Nunca se persiste.
type Principal struct {
	Email       string
	Roles       []string
	Authorities []string
}

// NewPrincipal construye el Principal a partir del subject y los roles del
// token. Los roles se parsean una sola vez acá; el resto del sistema consulta
// HasRole/IsAdmin y no vuelve a tocar strings.
func NewPrincipal(email string, roles []string) Principal {
	auths := make([]string, 0, len(roles))
	norm := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		norm = append(norm, r)
		auths = append(auths, AuthorityPrefix+r)
	}
	return Principal{Email: email, Roles: norm, Authorities: auths}
}

// HasRole indica si el principal tiene el rol dado (case-insensitive).
func (p Principal) HasRole(role string) bool {
	role = strings.ToUpper(strings.TrimSpace(role))
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole indica si el principal tiene al menos uno de los roles dados.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// IsAdmin es un shortcut para el rol privilegiado.
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// ParseRoles parsea la columna de roles (joined por comas) a la lista
// normalizada. Invariante del modelo: siempre al menos un rol; si la columna
// viene vacía se asume USER.
func ParseRoles(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if r := strings.ToUpper(strings.TrimSpace(p)); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return []string{RoleUser}
	}
	return out
}

// JoinRoles serializa la lista de roles a la forma almacenada.
func JoinRoles(roles []string) string {
	if len(roles) == 0 {
		return RoleUser
	}
	norm := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			norm = append(norm, r)
		}
	}
	if len(norm) == 0 {
		return RoleUser
	}
	return strings.Join(norm, ",")
}
