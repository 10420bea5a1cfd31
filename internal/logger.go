package internal

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"kgpay/entity"
	"kgpay/services"
)

// Logger writes structured records through zerolog and mirrors info and
// above to the payment_log collection when a database is attached.
type Logger struct {
	name     string
	log      zerolog.Logger
	database services.Database
}

// NewLogger creates a named logger. Debug mode switches to the console
// writer and enables debug-level output.
func NewLogger(name string, debug bool, database services.Database) *Logger {
	level := zerolog.InfoLevel
	var out io.Writer = os.Stdout
	if debug {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log := zerolog.New(out).Level(level).With().Timestamp().Str("module", name).Logger()
	return &Logger{
		name:     name,
		log:      log,
		database: database,
	}
}

func (l *Logger) Debug(message string) {
	l.log.Debug().Msg(message)
}

func (l *Logger) Info(message string) {
	l.log.Info().Msg(message)
	l.write("info", message, "")
}

func (l *Logger) Warn(message string) {
	l.log.Warn().Msg(message)
	l.write("warn", message, "")
}

func (l *Logger) Error(message string, err error) {
	l.log.Error().Err(err).Msg(message)
	text := ""
	if err != nil {
		text = err.Error()
	}
	l.write("error", message, text)
}

func (l *Logger) write(level, text, errText string) {
	if l.database == nil {
		return
	}
	record := &entity.LogMessage{
		Time:   time.Now(),
		Level:  level,
		Module: l.name,
		Text:   text,
		Error:  errText,
	}
	if err := l.database.WriteLogMessage(record); err != nil {
		l.log.Warn().Err(err).Msg("write log record")
	}
}
