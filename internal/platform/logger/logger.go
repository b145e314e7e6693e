// Package logger provides structured-ish logging for the webhook service.
package logger

import (
	"fmt"
	"log"
	"os"
)

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
)

// Logger is a per-component logger with an Info/Error/Fatal surface.
type Logger struct {
	name        string
	infoLogger  *log.Logger
	errorLogger *log.Logger
}

// New creates a logger tagged with a component name.
func New(name string) *Logger {
	return &Logger{
		name:        name,
		infoLogger:  log.New(os.Stdout, fmt.Sprintf("INFO: [%s] ", name), log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, fmt.Sprintf("ERROR: [%s] ", name), log.Ldate|log.Ltime|log.Lshortfile),
	}
}

func (l *Logger) Info(message string) {
	l.infoLogger.Println(message)
}

func (l *Logger) Error(message string) {
	l.errorLogger.Println(message)
}

func (l *Logger) Fatal(message string) {
	l.errorLogger.Fatal(message)
}

// Init sets up the package-level loggers used by the free functions below.
func Init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

func Info(v ...interface{}) {
	InfoLogger.Println(v...)
}

func Error(v ...interface{}) {
	ErrorLogger.Println(v...)
}
