package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// errorResponse estructura interna para la serialización JSON.
// El contrato con los clientes es fijo: status numérico, nombre del error,
// mensaje humano y timestamp del momento de la falla.
type errorResponse struct {
	Status    int    `json:"status"`
	Code      string `json:"error"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Maneja automáticamente errores de tipo *AppError y errores genéricos.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Status:    appErr.HTTPStatus,
		Code:      appErr.Code,
		Message:   appErr.Message,
		Detail:    appErr.Detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)

	_ = json.NewEncoder(w).Encode(resp)
}
