package services

// LogHandler is the logging surface passed into each component.
type LogHandler interface {
	Debug(message string)
	Info(message string)
	Warn(message string)
	Error(message string, err error)
}
