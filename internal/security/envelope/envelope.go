// Package envelope implementa el token de sesión stateless: un JWS firmado
// con un keypair RSA efímero, envuelto en un JWE simétrico (dir + A256CBC-HS512)
// con el secreto compartido del servidor.
//
// Modelo de confianza: la clave pública viaja embebida en el header del JWS,
// así que la verificación de firma sólo prueba consistencia interna (el payload
// fue firmado por ALGUNA privada que matchea esa pública). La identidad del
// emisor la garantiza la capa externa: sólo quien posee el secreto simétrico
// puede producir un envelope que descifre correctamente. Es una sutileza del
// modelo, no un bug; no reemplazar por un registro PKI sin revisar el diseño
// completo.
package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwe"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	// rolesClaim es el claim privado donde viaja la lista de roles.
	rolesClaim = "roles"
	// keyBits es el tamaño del keypair efímero generado por token.
	keyBits = 2048
	// DefaultTTL es la vigencia por defecto de un token.
	DefaultTTL = time.Hour
)

// Errores tipados del verificador. Los callers DEBEN distinguirlos:
// un token vencido puede ameritar re-login del lado del cliente, un token
// inválido es basura o manipulación.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims es el payload validado de un token. Inmutable una vez creado.
type Claims struct {
	Subject   string
	Roles     []string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Options configura Issuer y Verifier. Se construye una vez al arrancar
// y se pasa por inyección; ambos lados deben compartir Secret e Issuer.
type Options struct {
	// Secret es el secreto simétrico compartido. Se estira con SHA-512 a la
	// CEK de 64 bytes que requiere A256CBC-HS512.
	Secret string
	// Issuer es el valor fijo del claim "iss".
	Issuer string
	// TTL es la vigencia del token. Default: DefaultTTL.
	TTL time.Duration
	// Clock permite inyectar el reloj en tests. Default: time.Now.
	Clock func() time.Time
}

// contentKey deriva la clave de cifrado de contenido a partir del secreto.
func contentKey(secret string) []byte {
	sum := sha512.Sum512([]byte(secret))
	return sum[:]
}

// =================================================================================
// ISSUER
// =================================================================================

// Issuer emite tokens de sesión. Cada llamada a Issue genera un keypair RSA
// fresco, por lo que dos tokens para la misma identidad nunca son iguales.
// La generación de claves es CPU-bound y sin estado compartido: es seguro
// llamar Issue desde múltiples goroutines.
type Issuer struct {
	iss string
	ttl time.Duration
	cek []byte
	now func() time.Time
}

// NewIssuer crea un emisor de tokens a partir de las opciones dadas.
func NewIssuer(opts Options) *Issuer {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		iss: opts.Issuer,
		ttl: ttl,
		cek: contentKey(opts.Secret),
		now: now,
	}
}

// Issue construye el token opaco para una identidad autenticada.
// El caller es responsable de haber autenticado email; acá sólo se arma
// el envelope. roles no puede estar vacío.
func (i *Issuer) Issue(email string, roles []string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("envelope: subject vacío")
	}
	if len(roles) == 0 {
		return "", fmt.Errorf("envelope: se requiere al menos un rol")
	}

	now := i.now().UTC().Truncate(time.Second)

	tok := jwt.New()
	_ = tok.Set(jwt.IssuerKey, i.iss)
	_ = tok.Set(jwt.SubjectKey, email)
	_ = tok.Set(jwt.IssuedAtKey, now)
	_ = tok.Set(jwt.ExpirationKey, now.Add(i.ttl))
	_ = tok.Set(rolesClaim, roles)

	// Keypair efímero: se firma y se descarta. La privada nunca se persiste.
	priv, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return "", fmt.Errorf("envelope: generar keypair: %w", err)
	}

	pub, err := jwk.FromRaw(priv.Public())
	if err != nil {
		return "", fmt.Errorf("envelope: exportar clave pública: %w", err)
	}
	_ = pub.Set(jwk.KeyIDKey, uuid.NewString())

	hdrs := jws.NewHeaders()
	_ = hdrs.Set(jws.JWKKey, pub)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, priv, jws.WithProtectedHeaders(hdrs)))
	if err != nil {
		return "", fmt.Errorf("envelope: firmar claims: %w", err)
	}

	sealed, err := jwe.Encrypt(signed,
		jwe.WithKey(jwa.DIRECT, i.cek),
		jwe.WithContentEncryption(jwa.A256CBC_HS512),
	)
	if err != nil {
		return "", fmt.Errorf("envelope: cifrar envelope: %w", err)
	}

	return string(sealed), nil
}

// TTL expone la vigencia configurada (para armar expires_in en responses).
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// =================================================================================
// VERIFIER
// =================================================================================

// Verifier valida tokens opacos. Es una función pura de (token, secreto):
// sin estado compartido, seguro en paralelo. HTTP y WebSocket DEBEN usar la
// misma instancia para que el comportamiento de seguridad no divergiera entre
// transportes.
type Verifier struct {
	iss string
	cek []byte
	now func() time.Time
}

// NewVerifier crea un verificador a partir de las mismas opciones que el Issuer.
func NewVerifier(opts Options) *Verifier {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		iss: opts.Issuer,
		cek: contentKey(opts.Secret),
		now: now,
	}
}

// Verify descifra y valida un token opaco y reconstruye sus Claims.
// Retorna ErrTokenExpired sólo si el token era válido pero venció;
// cualquier otra falla (envelope malformado, secreto incorrecto, firma
// inválida, claims corruptos) retorna ErrTokenInvalid.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token vacío", ErrTokenInvalid)
	}

	// Paso 1: capa externa. Si el secreto no matchea o el envelope fue
	// manipulado, el descifrado autenticado falla acá.
	payload, err := jwe.Decrypt([]byte(token), jwe.WithKey(jwa.DIRECT, v.cek))
	if err != nil {
		return nil, fmt.Errorf("%w: descifrado fallido", ErrTokenInvalid)
	}

	// Paso 2: extraer la clave pública embebida del header protegido.
	msg, err := jws.Parse(payload)
	if err != nil || len(msg.Signatures()) == 0 {
		return nil, fmt.Errorf("%w: payload no es un JWS", ErrTokenInvalid)
	}
	embedded := msg.Signatures()[0].ProtectedHeaders().JWK()
	if embedded == nil {
		return nil, fmt.Errorf("%w: falta clave pública embebida", ErrTokenInvalid)
	}

	// Paso 3: verificar firma con esa misma clave embebida (ver doc del package).
	tok, err := jwt.Parse(payload,
		jwt.WithKey(jwa.RS256, embedded),
		jwt.WithValidate(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: firma inválida", ErrTokenInvalid)
	}

	// Paso 4: validar claims temporales e issuer.
	err = jwt.Validate(tok,
		jwt.WithClock(jwt.ClockFunc(v.now)),
		jwt.WithIssuer(v.iss),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: claims inválidos", ErrTokenInvalid)
	}

	roles := rolesFromToken(tok)
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: sin roles", ErrTokenInvalid)
	}

	return &Claims{
		Subject:   tok.Subject(),
		Roles:     roles,
		Issuer:    tok.Issuer(),
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}, nil
}

// rolesFromToken extrae el claim de roles tolerando las dos formas en que
// puede deserializar ([]string directo o []any de strings).
func rolesFromToken(tok jwt.Token) []string {
	v, ok := tok.Get(rolesClaim)
	if !ok {
		return nil
	}
	switch arr := v.(type) {
	case []string:
		return arr
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
