package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init configura el logger global. Sólo la primera llamada tiene efecto;
// main la hace apenas carga la config y antes de cualquier log.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L devuelve el logger global. Si nadie llamó Init todavía (tests, tools),
// se auto-inicializa en modo dev para no perder logs.
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Sync vacía los buffers pendientes. main lo difiere al salir.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
