package workers

import "github.com/amills-vpmgmt/vpmgmt-rates/models"

// LogFunc is a function that logs to the run_logs table
type LogFunc func(level models.LogLevel, source, message string)

// NoOpLogger does nothing (default)
var NoOpLogger LogFunc = func(level models.LogLevel, source, message string) {}
