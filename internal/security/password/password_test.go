package password

import "testing"

func TestHashVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := Hash("secreta123")
	if err != nil {
		t.Fatalf("Hash err: %v", err)
	}
	if h == "secreta123" {
		t.Fatal("el hash no puede ser el password en claro")
	}
	if !Verify("secreta123", h) {
		t.Fatal("Verify debería aceptar el password correcto")
	}
	if Verify("otra-cosa", h) {
		t.Fatal("Verify no debería aceptar un password incorrecto")
	}
}

func TestVerify_ArgumentOrder(t *testing.T) {
	t.Parallel()

	h, err := Hash("secreta123")
	if err != nil {
		t.Fatalf("Hash err: %v", err)
	}
	// El primer argumento es el password en claro, el segundo el hash.
	// Invertidos, bcrypt intenta parsear el claro como hash y falla siempre.
	if Verify(h, "secreta123") {
		t.Fatal("Verify con los argumentos invertidos no puede dar true")
	}
}

func TestHash_RejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := Hash(""); err == nil {
		t.Fatal("esperaba error con password vacío")
	}
	if Verify("", "$2a$12$x") {
		t.Fatal("Verify con password vacío debe ser false")
	}
}
