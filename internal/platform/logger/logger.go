// Package logger provides structured logging for the game server.
// Every phase execution and settlement should be traceable through this.
package logger

import (
	"log"
	"os"
)

// Logger provides leveled logging with a dedicated phase channel.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a new logger instance.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[GAME-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[GAME-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[GAME-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(msg)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(msg)
}

// Phase logs a phase execution with its turn context.
func (l *Logger) Phase(phase string, turnNumber int, details string) {
	l.infoLogger.Printf("[PHASE:%s] Turn:%d | %s", phase, turnNumber, details)
}
